package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/repository"
)

// enrollmentService implements EnrollmentService interface
type enrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	assignmentRepo repository.AssignmentRepository
	logger         *zap.Logger
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	assignmentRepo repository.AssignmentRepository,
	logger *zap.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		assignmentRepo: assignmentRepo,
		logger:         logger,
	}
}

// Enroll enrolls a student in a published course
func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if !course.IsPublished {
		return nil, fmt.Errorf("course %s is not published: %w", courseID, ErrNotFound)
	}
	if course.TutorID == studentID {
		return nil, fmt.Errorf("tutors cannot enroll in their own course: %w", ErrValidation)
	}

	enrollment := &domain.Enrollment{
		CourseID:  courseID,
		StudentID: studentID,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, fmt.Errorf("already enrolled in course %s: %w", courseID, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return enrollment, nil
}

// ListEnrollments lists a student's enrollments
func (s *enrollmentService) ListEnrollments(ctx context.Context, studentID string) ([]*domain.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// SubmitAssignment records a submission. Resubmission is allowed; the
// latest submission is the one graded.
func (s *enrollmentService) SubmitAssignment(ctx context.Context, studentID, assignmentID, fileURL string) (*domain.Submission, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if _, err := s.enrollmentRepo.GetByCourseAndStudent(ctx, assignment.CourseID, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("not enrolled in the assignment's course: %w", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	submission := &domain.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FileURL:      fileURL,
	}
	if err := s.enrollmentRepo.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return submission, nil
}

// CompleteCourse marks an enrollment completed and issues the certificate.
// Completing twice returns the existing certificate.
func (s *enrollmentService) CompleteCourse(ctx context.Context, studentID, courseID string) (*domain.Certificate, error) {
	enrollment, err := s.enrollmentRepo.GetByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("not enrolled in course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if enrollment.CompletedAt != nil {
		return s.certificateFor(ctx, enrollment)
	}

	if err := s.enrollmentRepo.MarkCompleted(ctx, enrollment.ID); err != nil {
		return nil, fmt.Errorf("failed to mark enrollment completed: %w", err)
	}

	certificate := &domain.Certificate{
		EnrollmentID: enrollment.ID,
		Serial:       newCertificateSerial(),
	}
	if err := s.enrollmentRepo.CreateCertificate(ctx, certificate); err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	return certificate, nil
}

// GetCertificate returns the certificate for a completed enrollment
func (s *enrollmentService) GetCertificate(ctx context.Context, studentID, courseID string) (*domain.Certificate, error) {
	enrollment, err := s.enrollmentRepo.GetByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("not enrolled in course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	return s.certificateFor(ctx, enrollment)
}

func (s *enrollmentService) certificateFor(ctx context.Context, enrollment *domain.Enrollment) (*domain.Certificate, error) {
	certificate, err := s.enrollmentRepo.GetCertificateByEnrollment(ctx, enrollment.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("certificate not issued yet: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return certificate, nil
}

// newCertificateSerial builds a printable serial like CERT-7F3A20B1
func newCertificateSerial() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "CERT-" + id[:8]
}
