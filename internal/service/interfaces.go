package service

import (
	"context"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/media"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResponseWithRefreshToken, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResponseWithRefreshToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponseWithRefreshToken, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest, avatarURL *string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// Mailer is the outbound mail surface the auth service needs
type Mailer interface {
	SendVerification(to, token string)
	SendPasswordReset(to, token string)
	SendWelcome(to, firstName string)
}

// CourseService defines ownership-checked course, module and assignment operations
type CourseService interface {
	CreateCourse(ctx context.Context, tutorID string, req *dto.CourseRequest) (*domain.Course, error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	ListCourses(ctx context.Context, onlyPublished bool, category string, limit, offset int) ([]*domain.Course, error)
	ListOwnCourses(ctx context.Context, tutorID string) ([]*domain.Course, error)
	SearchCourses(ctx context.Context, query string, from, size int) (int64, []*domain.Course, error)
	UpdateCourse(ctx context.Context, tutorID, courseID string, req *dto.CourseRequest) (*domain.Course, error)
	DeleteCourse(ctx context.Context, tutorID, courseID string) error

	CreateModule(ctx context.Context, tutorID, courseID string, req *dto.ModuleRequest) (*domain.Module, error)
	ListModules(ctx context.Context, courseID string) ([]*domain.Module, error)
	UpdateModule(ctx context.Context, tutorID, courseID, moduleID string, req *dto.ModuleRequest) (*domain.Module, error)
	DeleteModule(ctx context.Context, tutorID, courseID, moduleID string) error

	CreateAssignment(ctx context.Context, tutorID, courseID, moduleID string, req *dto.AssignmentRequest) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, moduleID string) ([]*domain.Assignment, error)
	UpdateAssignment(ctx context.Context, tutorID, courseID, assignmentID string, req *dto.AssignmentRequest) (*domain.Assignment, error)
	DeleteAssignment(ctx context.Context, tutorID, courseID, assignmentID string) error
}

// VideoService defines the upload-pipeline-backed video operations
type VideoService interface {
	UploadVideo(ctx context.Context, tutorID, courseID, moduleID, title, filePath string, isDemo bool) (*domain.Video, error)
	ListVideos(ctx context.Context, courseID string) ([]*domain.Video, error)
	UpdateVideo(ctx context.Context, tutorID, courseID, videoID string, req *dto.VideoUpdateRequest) (*domain.Video, error)
	DeleteVideo(ctx context.Context, tutorID, courseID, videoID string) error
	DemoVideo(ctx context.Context, courseID string) (*media.Resource, error)
}

// EnrollmentService defines student-facing operations
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID string) (*domain.Enrollment, error)
	ListEnrollments(ctx context.Context, studentID string) ([]*domain.Enrollment, error)
	SubmitAssignment(ctx context.Context, studentID, assignmentID, fileURL string) (*domain.Submission, error)
	CompleteCourse(ctx context.Context, studentID, courseID string) (*domain.Certificate, error)
	GetCertificate(ctx context.Context, studentID, courseID string) (*domain.Certificate, error)
}
