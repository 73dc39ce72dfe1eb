package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/pkg/database"
)

// videoRepository implements VideoRepository interface
type videoRepository struct {
	db *database.Postgres
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *database.Postgres) VideoRepository {
	return &videoRepository{db: db}
}

const videoColumns = `id, course_id, module_id, title, media_url, media_id, duration,
	position, is_demo, created_at`

// Create inserts a video and bumps the parent course counters in one transaction
func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now()
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO videos (id, course_id, module_id, title, media_url, media_id,
			duration, position, is_demo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, insert,
		video.ID,
		video.CourseID,
		video.ModuleID,
		video.Title,
		video.MediaURL,
		video.MediaID,
		video.Duration,
		video.Position,
		video.IsDemo,
		video.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	bump := `
		UPDATE courses
		SET total_videos = total_videos + 1,
			total_duration = total_duration + $2,
			updated_at = $3
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, bump, video.CourseID, video.Duration, time.Now()); err != nil {
		return fmt.Errorf("failed to update course counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit video create: %w", err)
	}

	return nil
}

func scanVideo(scanner interface{ Scan(...any) error }) (*domain.Video, error) {
	video := &domain.Video{}
	err := scanner.Scan(
		&video.ID,
		&video.CourseID,
		&video.ModuleID,
		&video.Title,
		&video.MediaURL,
		&video.MediaID,
		&video.Duration,
		&video.Position,
		&video.IsDemo,
		&video.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return video, nil
}

// GetByID retrieves a video by ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE id = $1`, videoColumns)

	video, err := scanVideo(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return video, nil
}

// ListByModule lists videos of a module ordered by position
func (r *videoRepository) ListByModule(ctx context.Context, moduleID string) ([]*domain.Video, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM videos WHERE module_id = $1 ORDER BY position ASC
	`, videoColumns)

	return r.list(ctx, query, moduleID)
}

// ListByCourse lists all videos of a course
func (r *videoRepository) ListByCourse(ctx context.Context, courseID string) ([]*domain.Video, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM videos WHERE course_id = $1 ORDER BY position ASC
	`, videoColumns)

	return r.list(ctx, query, courseID)
}

func (r *videoRepository) list(ctx context.Context, query string, arg any) ([]*domain.Video, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate videos: %w", err)
	}

	return videos, nil
}

// Update updates a video's title, position and demo flag. Duration and media
// URL stay what the CDN reported at upload time.
func (r *videoRepository) Update(ctx context.Context, video *domain.Video) error {
	query := `UPDATE videos SET title = $2, position = $3, is_demo = $4 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, video.ID, video.Title, video.Position, video.IsDemo)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("video with id %s not found: %w", video.ID, ErrNotFound)
	}

	return nil
}

// Delete removes a video and decrements the parent course counters in one transaction
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var courseID string
	var duration int
	err = tx.QueryRowContext(ctx, `SELECT course_id, duration FROM videos WHERE id = $1`, id).
		Scan(&courseID, &duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("video with id %s not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to load video for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	drop := `
		UPDATE courses
		SET total_videos = total_videos - 1,
			total_duration = total_duration - $2,
			updated_at = $3
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, drop, courseID, duration, time.Now()); err != nil {
		return fmt.Errorf("failed to update course counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit video delete: %w", err)
	}

	return nil
}
