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

// assignmentRepository implements AssignmentRepository interface
type assignmentRepository struct {
	db *database.Postgres
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.Postgres) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Create inserts an assignment and bumps total_assignments in one transaction
func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now()
	}

	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO assignments (id, course_id, module_id, title, description, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, insert,
		assignment.ID,
		assignment.CourseID,
		assignment.ModuleID,
		assignment.Title,
		assignment.Description,
		assignment.Deadline,
		assignment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	bump := `
		UPDATE courses
		SET total_assignments = total_assignments + 1, updated_at = $2
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, bump, assignment.CourseID, time.Now()); err != nil {
		return fmt.Errorf("failed to update course counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment create: %w", err)
	}

	return nil
}

func scanAssignment(scanner interface{ Scan(...any) error }) (*domain.Assignment, error) {
	assignment := &domain.Assignment{}
	var deadline sql.NullTime

	err := scanner.Scan(
		&assignment.ID,
		&assignment.CourseID,
		&assignment.ModuleID,
		&assignment.Title,
		&assignment.Description,
		&deadline,
		&assignment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadline.Valid {
		assignment.Deadline = &deadline.Time
	}

	return assignment, nil
}

// GetByID retrieves an assignment by ID
func (r *assignmentRepository) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	query := `
		SELECT id, course_id, module_id, title, description, deadline, created_at
		FROM assignments
		WHERE id = $1
	`

	assignment, err := scanAssignment(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("assignment with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return assignment, nil
}

// ListByModule lists assignments of a module
func (r *assignmentRepository) ListByModule(ctx context.Context, moduleID string) ([]*domain.Assignment, error) {
	query := `
		SELECT id, course_id, module_id, title, description, deadline, created_at
		FROM assignments
		WHERE module_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return assignments, nil
}

// Update updates an assignment's title, description and deadline
func (r *assignmentRepository) Update(ctx context.Context, assignment *domain.Assignment) error {
	query := `UPDATE assignments SET title = $2, description = $3, deadline = $4 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query,
		assignment.ID,
		assignment.Title,
		assignment.Description,
		assignment.Deadline,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("assignment with id %s not found: %w", assignment.ID, ErrNotFound)
	}

	return nil
}

// Delete removes an assignment and drops total_assignments in one transaction
func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var courseID string
	err = tx.QueryRowContext(ctx, `SELECT course_id FROM assignments WHERE id = $1`, id).Scan(&courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("assignment with id %s not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to load assignment for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	drop := `
		UPDATE courses
		SET total_assignments = total_assignments - 1, updated_at = $2
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, drop, courseID, time.Now()); err != nil {
		return fmt.Errorf("failed to update course counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment delete: %w", err)
	}

	return nil
}
