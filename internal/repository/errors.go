package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateToken is returned when trying to create a token with an existing hash
	ErrDuplicateToken = errors.New("token with this hash already exists")

	// ErrDuplicateSlug is returned when a course slug collides
	ErrDuplicateSlug = errors.New("course with this slug already exists")

	// ErrDuplicateEnrollment is returned when a student enrolls in the same course twice
	ErrDuplicateEnrollment = errors.New("student is already enrolled in this course")
)
