package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/google/uuid"
)

// Resource is the CDN's description of a stored asset
type Resource struct {
	MediaID   string  `json:"public_id"`
	URL       string  `json:"secure_url"`
	Duration  float64 `json:"duration"`
	Bytes     int64   `json:"bytes"`
	Format    string  `json:"format"`
	CreatedAt string  `json:"created_at"`
}

// UploadOptions controls a single upload request
type UploadOptions struct {
	// PublicID is the destination path of the asset on the CDN
	PublicID string
	// AutoQuality requests automatic quality/format transcoding (single-shot path)
	AutoQuality bool
	// AsyncProcessing requests asynchronous post-processing (chunked path)
	AsyncProcessing bool
}

// Provider is the CDN surface the upload pipeline talks to
type Provider interface {
	Upload(ctx context.Context, file io.Reader, opts UploadOptions) (*Resource, error)
	UploadChunked(ctx context.Context, file io.Reader, size int64, opts UploadOptions) (*Resource, error)
	Destroy(ctx context.Context, mediaID string) error
	Resource(ctx context.Context, mediaID string) (*Resource, error)
	ListByPrefix(ctx context.Context, prefix string, maxResults int) ([]Resource, error)
}

// ChunkSize is the fixed chunk size for streaming uploads
const ChunkSize = 20 << 20 // 20MB

// Client is an HTTP client for the media CDN's upload and admin API
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
}

// NewClient creates a CDN client. The zero http.Client timeout is deliberate:
// the per-request deadline comes from the caller's context.
func NewClient(baseURL, cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

func (c *Client) uploadURL() string {
	return fmt.Sprintf("%s/v1/%s/video/upload", c.baseURL, c.cloudName)
}

// Upload performs a single-request multipart upload
func (c *Client) Upload(ctx context.Context, file io.Reader, opts UploadOptions) (*Resource, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("public_id", opts.PublicID); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if opts.AutoQuality {
		if err := writer.WriteField("quality", "auto"); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
		if err := writer.WriteField("format", "auto"); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", path.Base(opts.PublicID))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy file into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	return c.doResource(req)
}

// UploadChunked streams the file in fixed-size chunks using Content-Range
// requests tied together by an upload id. The CDN responds with the final
// resource on the last chunk; intermediate chunks return 202.
func (c *Client) UploadChunked(ctx context.Context, file io.Reader, size int64, opts UploadOptions) (*Resource, error) {
	uploadID := uuid.New().String()
	buf := make([]byte, ChunkSize)

	var offset int64
	for offset < size {
		n, err := io.ReadFull(file, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return nil, fmt.Errorf("failed to read chunk at offset %d: %w", offset, err)
		}
		if n == 0 {
			break
		}

		chunkEnd := offset + int64(n) - 1
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL(), bytes.NewReader(buf[:n]))
		if err != nil {
			return nil, fmt.Errorf("failed to build chunk request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, chunkEnd, size))
		req.Header.Set("X-Unique-Upload-Id", uploadID)
		req.Header.Set("X-Public-Id", opts.PublicID)
		if opts.AsyncProcessing {
			req.Header.Set("X-Async", "true")
		}
		req.SetBasicAuth(c.apiKey, c.apiSecret)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("chunk upload failed at offset %d: %w", offset, err)
		}

		last := chunkEnd+1 >= size
		if last {
			return parseResource(resp)
		}

		// Intermediate chunk: drain and continue
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("chunk at offset %d rejected with status %d", offset, resp.StatusCode)
		}

		offset = chunkEnd + 1
	}

	return nil, fmt.Errorf("file exhausted before reaching declared size %d", size)
}

// Destroy deletes an asset by its identifier
func (c *Client) Destroy(ctx context.Context, mediaID string) error {
	endpoint := fmt.Sprintf("%s/v1/%s/video/%s", c.baseURL, c.cloudName, url.PathEscape(mediaID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("destroy request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("destroy of %s failed with status %d", mediaID, resp.StatusCode)
	}

	return nil
}

// Resource fetches metadata for an asset by its identifier
func (c *Client) Resource(ctx context.Context, mediaID string) (*Resource, error) {
	endpoint := fmt.Sprintf("%s/v1/%s/resources/video/%s", c.baseURL, c.cloudName, url.PathEscape(mediaID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	return c.doResource(req)
}

// ListByPrefix lists assets whose public id starts with prefix
func (c *Client) ListByPrefix(ctx context.Context, prefix string, maxResults int) ([]Resource, error) {
	endpoint := fmt.Sprintf("%s/v1/%s/resources/video", c.baseURL, c.cloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}

	q := req.URL.Query()
	q.Set("prefix", prefix)
	if maxResults > 0 {
		q.Set("max_results", strconv.Itoa(maxResults))
	}
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	return payload.Resources, nil
}

// TransformURL builds a delivery URL applying a named transformation
func (c *Client) TransformURL(mediaID, transform string) string {
	if transform == "" {
		return fmt.Sprintf("%s/%s/video/upload/%s", c.baseURL, c.cloudName, mediaID)
	}
	return fmt.Sprintf("%s/%s/video/upload/%s/%s", c.baseURL, c.cloudName, transform, mediaID)
}

func (c *Client) doResource(req *http.Request) (*Resource, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return parseResource(resp)
}

// parseResource decodes and validates a resource response. A 200 body missing
// the URL or identifier is treated as a failure.
func parseResource(resp *http.Response) (*Resource, error) {
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var resource Resource
	if err := json.Unmarshal(raw, &resource); err != nil {
		return nil, fmt.Errorf("failed to decode resource response: %w", err)
	}

	if resource.URL == "" || resource.MediaID == "" {
		return nil, fmt.Errorf("provider response missing url or public id")
	}

	return &resource, nil
}

var _ Provider = (*Client)(nil)
