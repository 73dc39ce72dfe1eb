package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/pkg/database"
)

// courseRepository implements CourseRepository interface
type courseRepository struct {
	db *database.Postgres
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *database.Postgres) CourseRepository {
	return &courseRepository{db: db}
}

const courseColumns = `id, tutor_id, title, slug, description, category, price_cents,
	thumbnail_url, is_published, total_videos, total_duration, total_assignments,
	created_at, updated_at`

// Create creates a new course
func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (id, tutor_id, title, slug, description, category, price_cents,
			thumbnail_url, is_published, total_videos, total_duration, total_assignments,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, 0, $10, $11)
	`

	if course.ID == "" {
		course.ID = uuid.New().String()
	}

	now := time.Now()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	_, err := r.db.DB.ExecContext(ctx, query,
		course.ID,
		course.TutorID,
		course.Title,
		course.Slug,
		course.Description,
		course.Category,
		course.PriceCents,
		course.ThumbnailURL,
		course.IsPublished,
		course.CreatedAt,
		course.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("slug %s taken: %w", course.Slug, ErrDuplicateSlug)
			}
		}
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

func scanCourse(scanner interface{ Scan(...any) error }) (*domain.Course, error) {
	course := &domain.Course{}
	var thumbnail sql.NullString

	err := scanner.Scan(
		&course.ID,
		&course.TutorID,
		&course.Title,
		&course.Slug,
		&course.Description,
		&course.Category,
		&course.PriceCents,
		&thumbnail,
		&course.IsPublished,
		&course.TotalVideos,
		&course.TotalDuration,
		&course.TotalAssignments,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if thumbnail.Valid {
		course.ThumbnailURL = &thumbnail.String
	}

	return course, nil
}

// GetByID retrieves a course by ID
func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)

	course, err := scanCourse(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return course, nil
}

// List lists courses, optionally filtered to published ones and a category
func (r *courseRepository) List(ctx context.Context, onlyPublished bool, category string, limit, offset int) ([]*domain.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM courses
		WHERE ($1 = FALSE OR is_published = TRUE)
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, courseColumns)

	rows, err := r.db.DB.QueryContext(ctx, query, onlyPublished, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// ListByTutor lists all courses owned by a tutor
func (r *courseRepository) ListByTutor(ctx context.Context, tutorID string) ([]*domain.Course, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM courses WHERE tutor_id = $1 ORDER BY created_at DESC
	`, courseColumns)

	rows, err := r.db.DB.QueryContext(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses by tutor: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

func collectCourses(rows *sql.Rows) ([]*domain.Course, error) {
	var courses []*domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	return courses, nil
}

// Update updates mutable course fields
func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	query := `
		UPDATE courses
		SET title = $2, description = $3, category = $4, price_cents = $5,
			thumbnail_url = $6, is_published = $7, updated_at = $8
		WHERE id = $1
	`

	course.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Category,
		course.PriceCents,
		course.ThumbnailURL,
		course.IsPublished,
		course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course with id %s not found: %w", course.ID, ErrNotFound)
	}

	return nil
}

// Delete deletes a course and (via ON DELETE CASCADE) its children
func (r *courseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM courses WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}
