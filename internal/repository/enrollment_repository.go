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

// enrollmentRepository implements EnrollmentRepository interface
type enrollmentRepository struct {
	db *database.Postgres
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *database.Postgres) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create enrolls a student in a course
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, course_id, student_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
	`

	if enrollment.ID == "" {
		enrollment.ID = uuid.New().String()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		enrollment.ID,
		enrollment.CourseID,
		enrollment.StudentID,
		enrollment.EnrolledAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("enrollment exists: %w", ErrDuplicateEnrollment)
			}
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

func scanEnrollment(scanner interface{ Scan(...any) error }) (*domain.Enrollment, error) {
	enrollment := &domain.Enrollment{}
	var completedAt sql.NullTime

	err := scanner.Scan(
		&enrollment.ID,
		&enrollment.CourseID,
		&enrollment.StudentID,
		&enrollment.EnrolledAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		enrollment.CompletedAt = &completedAt.Time
	}

	return enrollment, nil
}

// GetByCourseAndStudent retrieves an enrollment for a course/student pair
func (r *enrollmentRepository) GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*domain.Enrollment, error) {
	query := `
		SELECT id, course_id, student_id, enrolled_at, completed_at
		FROM enrollments
		WHERE course_id = $1 AND student_id = $2
	`

	enrollment, err := scanEnrollment(r.db.DB.QueryRowContext(ctx, query, courseID, studentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("enrollment not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

// GetByID retrieves an enrollment by ID
func (r *enrollmentRepository) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	query := `
		SELECT id, course_id, student_id, enrolled_at, completed_at
		FROM enrollments
		WHERE id = $1
	`

	enrollment, err := scanEnrollment(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("enrollment with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return enrollment, nil
}

// ListByStudent lists a student's enrollments, newest first
func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]*domain.Enrollment, error) {
	query := `
		SELECT id, course_id, student_id, enrolled_at, completed_at
		FROM enrollments
		WHERE student_id = $1
		ORDER BY enrolled_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*domain.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}

	return enrollments, nil
}

// MarkCompleted stamps completed_at once; completing twice is a no-op error
func (r *enrollmentRepository) MarkCompleted(ctx context.Context, enrollmentID string) error {
	query := `UPDATE enrollments SET completed_at = $2 WHERE id = $1 AND completed_at IS NULL`

	result, err := r.db.DB.ExecContext(ctx, query, enrollmentID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark enrollment completed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("enrollment with id %s not completable: %w", enrollmentID, ErrNotFound)
	}

	return nil
}

// CreateSubmission stores a student's assignment submission
func (r *enrollmentRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, assignment_id, student_id, file_url, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		submission.ID,
		submission.AssignmentID,
		submission.StudentID,
		submission.FileURL,
		submission.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetSubmission retrieves a student's submission for an assignment
func (r *enrollmentRepository) GetSubmission(ctx context.Context, assignmentID, studentID string) (*domain.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, file_url, grade, submitted_at
		FROM submissions
		WHERE assignment_id = $1 AND student_id = $2
		ORDER BY submitted_at DESC
		LIMIT 1
	`

	submission := &domain.Submission{}
	var grade sql.NullInt64

	err := r.db.DB.QueryRowContext(ctx, query, assignmentID, studentID).Scan(
		&submission.ID,
		&submission.AssignmentID,
		&submission.StudentID,
		&submission.FileURL,
		&grade,
		&submission.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if grade.Valid {
		g := int(grade.Int64)
		submission.Grade = &g
	}

	return submission, nil
}

// ListSubmissions lists all submissions for an assignment
func (r *enrollmentRepository) ListSubmissions(ctx context.Context, assignmentID string) ([]*domain.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, file_url, grade, submitted_at
		FROM submissions
		WHERE assignment_id = $1
		ORDER BY submitted_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*domain.Submission
	for rows.Next() {
		submission := &domain.Submission{}
		var grade sql.NullInt64

		err := rows.Scan(
			&submission.ID,
			&submission.AssignmentID,
			&submission.StudentID,
			&submission.FileURL,
			&grade,
			&submission.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}

		if grade.Valid {
			g := int(grade.Int64)
			submission.Grade = &g
		}

		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return submissions, nil
}

// CreateCertificate stores a certificate for a completed enrollment
func (r *enrollmentRepository) CreateCertificate(ctx context.Context, certificate *domain.Certificate) error {
	query := `
		INSERT INTO certificates (id, enrollment_id, serial, issued_at)
		VALUES ($1, $2, $3, $4)
	`

	if certificate.ID == "" {
		certificate.ID = uuid.New().String()
	}
	if certificate.IssuedAt.IsZero() {
		certificate.IssuedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		certificate.ID,
		certificate.EnrollmentID,
		certificate.Serial,
		certificate.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	return nil
}

// GetCertificateByEnrollment retrieves a certificate for an enrollment
func (r *enrollmentRepository) GetCertificateByEnrollment(ctx context.Context, enrollmentID string) (*domain.Certificate, error) {
	query := `
		SELECT id, enrollment_id, serial, issued_at
		FROM certificates
		WHERE enrollment_id = $1
	`

	certificate := &domain.Certificate{}
	err := r.db.DB.QueryRowContext(ctx, query, enrollmentID).Scan(
		&certificate.ID,
		&certificate.EnrollmentID,
		&certificate.Serial,
		&certificate.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("certificate not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return certificate, nil
}
