package dto

import "github.com/courseforge/backend/internal/domain"

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresIn   int               `json:"expires_in"`
	User        domain.PublicUser `json:"user"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one entry of a field-level validation error list
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// CourseSearchResponse wraps a search result page
type CourseSearchResponse struct {
	Total   int64            `json:"total"`
	Courses []*domain.Course `json:"courses"`
}

// VideoUploadResponse is returned after a successful video upload
type VideoUploadResponse struct {
	Video *domain.Video `json:"video"`
}
