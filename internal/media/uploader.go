package media

import (
	"context"
	"fmt"
	"os"
	"path"

	"go.uber.org/zap"
)

// SingleUploadLimit is the largest file sent as one request; anything above
// goes through the chunked streaming path, which the provider handles far
// more reliably for large payloads.
const SingleUploadLimit = 40 << 20 // 40MB

// UploadResult is what the pipeline hands back to controllers
type UploadResult struct {
	URL      string
	MediaID  string
	Duration int
}

// Uploader orchestrates video uploads to the CDN: destination path
// computation, size-based branching and retry with exponential backoff.
// It never touches the database; persisting the video row is the caller's job.
type Uploader struct {
	provider   Provider
	rootFolder string
	policy     RetryPolicy
	logger     *zap.Logger
}

// NewUploader creates an uploader with the default retry policy
func NewUploader(provider Provider, rootFolder string, maxAttempts int, logger *zap.Logger) *Uploader {
	return &Uploader{
		provider:   provider,
		rootFolder: rootFolder,
		policy:     DefaultRetryPolicy(maxAttempts),
		logger:     logger,
	}
}

// WithRetryPolicy overrides the retry policy; used by tests to drop delays
func (u *Uploader) WithRetryPolicy(policy RetryPolicy) *Uploader {
	u.policy = policy
	return u
}

// DestinationID computes the deterministic CDN path for a video
func (u *Uploader) DestinationID(folder, displayName string, isDemo bool) string {
	kind := "videos"
	if isDemo {
		kind = "demo"
	}
	return path.Join(u.rootFolder, folder, kind, Slug(displayName))
}

// UploadVideo uploads the file at filePath and returns the canonical media
// URL, identifier and provider-reported duration. Files at or below the
// single-shot limit additionally request automatic quality transcoding;
// larger files stream in fixed chunks with async post-processing.
func (u *Uploader) UploadVideo(ctx context.Context, filePath, folder, displayName string, isDemo bool) (*UploadResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("video file not readable: %w", err)
	}

	publicID := u.DestinationID(folder, displayName, isDemo)
	return u.upload(ctx, filePath, publicID, info.Size())
}

func (u *Uploader) upload(ctx context.Context, filePath, publicID string, size int64) (*UploadResult, error) {
	var resource *Resource

	attempt := 0
	err := u.policy.Do(ctx, func() error {
		attempt++

		file, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open video file: %w", err)
		}
		defer file.Close()

		var res *Resource
		if size <= SingleUploadLimit {
			res, err = u.provider.Upload(ctx, file, UploadOptions{
				PublicID:    publicID,
				AutoQuality: true,
			})
		} else {
			res, err = u.provider.UploadChunked(ctx, file, size, UploadOptions{
				PublicID:        publicID,
				AsyncProcessing: true,
			})
		}
		if err != nil {
			u.logger.Warn("video upload attempt failed",
				zap.String("public_id", publicID),
				zap.Int("attempt", attempt),
				zap.Int64("size", size),
				zap.Error(err),
			)
			return err
		}

		resource = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upload of %s failed after %d attempts: %w", publicID, attempt, err)
	}

	u.logger.Info("video uploaded",
		zap.String("public_id", resource.MediaID),
		zap.Int("attempts", attempt),
		zap.Float64("duration", resource.Duration),
	)

	return &UploadResult{
		URL:      resource.URL,
		MediaID:  resource.MediaID,
		Duration: int(resource.Duration),
	}, nil
}

// Delete removes an uploaded video from the CDN
func (u *Uploader) Delete(ctx context.Context, mediaID string) error {
	return u.provider.Destroy(ctx, mediaID)
}

// Metadata fetches the CDN's current metadata for an asset
func (u *Uploader) Metadata(ctx context.Context, mediaID string) (*Resource, error) {
	return u.provider.Resource(ctx, mediaID)
}

// ListFolder lists uploaded videos under a course folder
func (u *Uploader) ListFolder(ctx context.Context, folder string) ([]Resource, error) {
	prefix := path.Join(u.rootFolder, folder) + "/"
	return u.provider.ListByPrefix(ctx, prefix, 0)
}

// DemoVideo returns the single demo video under a course folder. A course
// without one yields (nil, nil); only CDN failures are errors.
func (u *Uploader) DemoVideo(ctx context.Context, folder string) (*Resource, error) {
	prefix := path.Join(u.rootFolder, folder, "demo") + "/"

	resources, err := u.provider.ListByPrefix(ctx, prefix, 1)
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return nil, nil
	}

	return &resources[0], nil
}
