package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/media"
	"github.com/courseforge/backend/internal/repository"
)

// videoService implements VideoService: metadata lives in Postgres, the
// bytes live with the media CDN behind the upload pipeline.
type videoService struct {
	videoRepo  repository.VideoRepository
	courseRepo repository.CourseRepository
	moduleRepo repository.ModuleRepository
	uploader   *media.Uploader
	logger     *zap.Logger
}

// NewVideoService creates a new video service
func NewVideoService(
	videoRepo repository.VideoRepository,
	courseRepo repository.CourseRepository,
	moduleRepo repository.ModuleRepository,
	uploader *media.Uploader,
	logger *zap.Logger,
) VideoService {
	return &videoService{
		videoRepo:  videoRepo,
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *videoService) ownedCourse(ctx context.Context, tutorID, courseID string) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.TutorID != tutorID {
		return nil, fmt.Errorf("course %s is not owned by caller: %w", courseID, ErrForbidden)
	}
	return course, nil
}

// UploadVideo pushes the file through the upload pipeline and records the
// video row. Duration comes from the CDN response, never from the client.
func (s *videoService) UploadVideo(ctx context.Context, tutorID, courseID, moduleID, title, filePath string, isDemo bool) (*domain.Video, error) {
	course, err := s.ownedCourse(ctx, tutorID, courseID)
	if err != nil {
		return nil, err
	}

	module, err := s.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("module %s: %w", moduleID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if module.CourseID != courseID {
		return nil, fmt.Errorf("module %s: %w", moduleID, ErrNotFound)
	}

	result, err := s.uploader.UploadVideo(ctx, filePath, course.Slug, title, isDemo)
	if err != nil {
		s.logger.Error("video upload failed",
			zap.String("course_id", courseID),
			zap.String("module_id", moduleID),
			zap.Error(err))
		return nil, fmt.Errorf("video upload failed: %w", ErrUpstream)
	}

	video := &domain.Video{
		CourseID: courseID,
		ModuleID: moduleID,
		Title:    title,
		MediaURL: result.URL,
		MediaID:  result.MediaID,
		Duration: result.Duration,
		IsDemo:   isDemo,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		// The row failed after the CDN accepted the bytes; remove the
		// orphaned asset so a retry does not collide on the public id.
		if delErr := s.uploader.Delete(ctx, result.MediaID); delErr != nil {
			s.logger.Error("failed to clean up orphaned media asset",
				zap.String("media_id", result.MediaID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save video: %w", err)
	}

	return video, nil
}

// ListVideos lists a course's videos
func (s *videoService) ListVideos(ctx context.Context, courseID string) ([]*domain.Video, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	videos, err := s.videoRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

// UpdateVideo updates a video's metadata; the asset itself is immutable
func (s *videoService) UpdateVideo(ctx context.Context, tutorID, courseID, videoID string, req *dto.VideoUpdateRequest) (*domain.Video, error) {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return nil, err
	}

	video, err := s.courseVideo(ctx, courseID, videoID)
	if err != nil {
		return nil, err
	}

	video.Title = req.Title
	video.Position = req.Position
	video.IsDemo = req.IsDemo
	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	return video, nil
}

// DeleteVideo removes the row (adjusting course counters) and then the CDN
// asset. A failed CDN delete leaves a dangling asset, not a dangling row.
func (s *videoService) DeleteVideo(ctx context.Context, tutorID, courseID, videoID string) error {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return err
	}

	video, err := s.courseVideo(ctx, courseID, videoID)
	if err != nil {
		return err
	}

	if err := s.videoRepo.Delete(ctx, videoID); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	if err := s.uploader.Delete(ctx, video.MediaID); err != nil {
		s.logger.Error("failed to delete media asset",
			zap.String("media_id", video.MediaID), zap.Error(err))
	}

	return nil
}

// DemoVideo returns the demo asset for a course, open to anyone
func (s *videoService) DemoVideo(ctx context.Context, courseID string) (*media.Resource, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	resource, err := s.uploader.DemoVideo(ctx, course.Slug)
	if err != nil {
		s.logger.Error("demo video lookup failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("demo video unavailable: %w", ErrUpstream)
	}
	if resource == nil {
		return nil, fmt.Errorf("course %s has no demo video: %w", courseID, ErrNotFound)
	}

	return resource, nil
}

func (s *videoService) courseVideo(ctx context.Context, courseID, videoID string) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if video.CourseID != courseID {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
	}
	return video, nil
}
