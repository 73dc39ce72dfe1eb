package repository

import (
	"context"

	"github.com/courseforge/backend/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	SetEmailVerified(ctx context.Context, userID string) error
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.RefreshToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}

// EmailTokenRepository defines methods for verification and reset tokens
type EmailTokenRepository interface {
	Create(ctx context.Context, token *domain.EmailToken) error
	GetByToken(ctx context.Context, token, purpose string) (*domain.EmailToken, error)
	MarkUsed(ctx context.Context, tokenID string) error
	DeleteByUserAndPurpose(ctx context.Context, userID, purpose string) error
}

// CourseRepository defines methods for course operations
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context, onlyPublished bool, category string, limit, offset int) ([]*domain.Course, error)
	ListByTutor(ctx context.Context, tutorID string) ([]*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id string) error
}

// ModuleRepository defines methods for course module operations
type ModuleRepository interface {
	Create(ctx context.Context, module *domain.Module) error
	GetByID(ctx context.Context, id string) (*domain.Module, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error)
	Update(ctx context.Context, module *domain.Module) error
	Delete(ctx context.Context, id string) error
}

// VideoRepository defines methods for video operations. Create and Delete
// adjust the parent course's denormalized counters in the same transaction.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	ListByModule(ctx context.Context, moduleID string) ([]*domain.Video, error)
	ListByCourse(ctx context.Context, courseID string) ([]*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, id string) error
}

// AssignmentRepository defines methods for assignment operations. Create and
// Delete adjust the parent course's total_assignments in the same transaction.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) error
	GetByID(ctx context.Context, id string) (*domain.Assignment, error)
	ListByModule(ctx context.Context, moduleID string) ([]*domain.Assignment, error)
	Update(ctx context.Context, assignment *domain.Assignment) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentRepository defines methods for enrollments, submissions and certificates
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*domain.Enrollment, error)
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]*domain.Enrollment, error)
	MarkCompleted(ctx context.Context, enrollmentID string) error

	CreateSubmission(ctx context.Context, submission *domain.Submission) error
	GetSubmission(ctx context.Context, assignmentID, studentID string) (*domain.Submission, error)
	ListSubmissions(ctx context.Context, assignmentID string) ([]*domain.Submission, error)

	CreateCertificate(ctx context.Context, certificate *domain.Certificate) error
	GetCertificateByEnrollment(ctx context.Context, enrollmentID string) (*domain.Certificate, error)
}
