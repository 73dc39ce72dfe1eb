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

// moduleRepository implements ModuleRepository interface
type moduleRepository struct {
	db *database.Postgres
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *database.Postgres) ModuleRepository {
	return &moduleRepository{db: db}
}

// Create creates a new module
func (r *moduleRepository) Create(ctx context.Context, module *domain.Module) error {
	query := `
		INSERT INTO modules (id, course_id, title, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if module.ID == "" {
		module.ID = uuid.New().String()
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		module.ID,
		module.CourseID,
		module.Title,
		module.Position,
		module.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	return nil
}

// GetByID retrieves a module by ID
func (r *moduleRepository) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	query := `SELECT id, course_id, title, position, created_at FROM modules WHERE id = $1`

	module := &domain.Module{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&module.ID,
		&module.CourseID,
		&module.Title,
		&module.Position,
		&module.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("module with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	return module, nil
}

// ListByCourse lists modules of a course ordered by position
func (r *moduleRepository) ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error) {
	query := `
		SELECT id, course_id, title, position, created_at
		FROM modules
		WHERE course_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	defer rows.Close()

	var modules []*domain.Module
	for rows.Next() {
		module := &domain.Module{}
		err := rows.Scan(
			&module.ID,
			&module.CourseID,
			&module.Title,
			&module.Position,
			&module.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modules: %w", err)
	}

	return modules, nil
}

// Update updates a module's title and position
func (r *moduleRepository) Update(ctx context.Context, module *domain.Module) error {
	query := `UPDATE modules SET title = $2, position = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, module.ID, module.Title, module.Position)
	if err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("module with id %s not found: %w", module.ID, ErrNotFound)
	}

	return nil
}

// Delete deletes a module. Its videos and assignments go with it via FK
// cascade, so the course counters are decremented by the module's totals
// in the same transaction.
func (r *moduleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var courseID string
	err = tx.QueryRowContext(ctx, `SELECT course_id FROM modules WHERE id = $1`, id).Scan(&courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("module with id %s not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to get module: %w", err)
	}

	var videoCount, durationSum int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(duration), 0) FROM videos WHERE module_id = $1`, id).
		Scan(&videoCount, &durationSum)
	if err != nil {
		return fmt.Errorf("failed to count module videos: %w", err)
	}

	var assignmentCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments WHERE module_id = $1`, id).Scan(&assignmentCount)
	if err != nil {
		return fmt.Errorf("failed to count module assignments: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	drop := `
		UPDATE courses
		SET total_videos = total_videos - $2,
			total_duration = total_duration - $3,
			total_assignments = total_assignments - $4,
			updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, drop, courseID, videoCount, durationSum, assignmentCount, time.Now()); err != nil {
		return fmt.Errorf("failed to update course counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit module delete: %w", err)
	}

	return nil
}
