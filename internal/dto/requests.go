package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=student tutor"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ForgotPasswordRequest represents a password reset initiation request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents a password reset completion request
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// VerifyEmailRequest represents an email verification request
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// CourseRequest represents a course create/update request
type CourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"required,min=10"`
	Category    string `json:"category" binding:"required,min=2,max=100"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	IsPublished bool   `json:"is_published"`
}

// ModuleRequest represents a module create/update request
type ModuleRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Position int    `json:"position" binding:"min=0"`
}

// VideoUpdateRequest represents a video metadata update request
type VideoUpdateRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=200"`
	Position int    `json:"position" binding:"min=0"`
	IsDemo   bool   `json:"is_demo"`
}

// SubmissionRequest represents an assignment submission
type SubmissionRequest struct {
	FileURL string `json:"file_url" binding:"required,url"`
}

// AssignmentRequest represents an assignment create/update request
type AssignmentRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"required"`
	Deadline    *string `json:"deadline" binding:"omitempty"`
}
