package domain

import "time"

// Course represents a published or draft course owned by a tutor.
// The total_* columns are denormalized aggregates maintained alongside
// child writes inside the same transaction.
type Course struct {
	ID               string    `json:"id" db:"id"`
	TutorID          string    `json:"tutor_id" db:"tutor_id"`
	Title            string    `json:"title" db:"title"`
	Slug             string    `json:"slug" db:"slug"`
	Description      string    `json:"description" db:"description"`
	Category         string    `json:"category" db:"category"`
	PriceCents       int64     `json:"price_cents" db:"price_cents"`
	ThumbnailURL     *string   `json:"thumbnail_url" db:"thumbnail_url"`
	IsPublished      bool      `json:"is_published" db:"is_published"`
	TotalVideos      int       `json:"total_videos" db:"total_videos"`
	TotalDuration    int       `json:"total_duration" db:"total_duration"`
	TotalAssignments int       `json:"total_assignments" db:"total_assignments"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Module groups videos and assignments inside a course
type Module struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Video represents an uploaded lecture video. Duration is authoritative
// from the CDN-reported value, never from client input.
type Video struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	ModuleID  string    `json:"module_id" db:"module_id"`
	Title     string    `json:"title" db:"title"`
	MediaURL  string    `json:"media_url" db:"media_url"`
	MediaID   string    `json:"media_id" db:"media_id"`
	Duration  int       `json:"duration" db:"duration"`
	Position  int       `json:"position" db:"position"`
	IsDemo    bool      `json:"is_demo" db:"is_demo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Assignment represents a gradable task attached to a module
type Assignment struct {
	ID          string     `json:"id" db:"id"`
	CourseID    string     `json:"course_id" db:"course_id"`
	ModuleID    string     `json:"module_id" db:"module_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Deadline    *time.Time `json:"deadline" db:"deadline"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Enrollment links a student to a course
type Enrollment struct {
	ID          string     `json:"id" db:"id"`
	CourseID    string     `json:"course_id" db:"course_id"`
	StudentID   string     `json:"student_id" db:"student_id"`
	EnrolledAt  time.Time  `json:"enrolled_at" db:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

// Submission is a student's uploaded answer to an assignment
type Submission struct {
	ID           string    `json:"id" db:"id"`
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	FileURL      string    `json:"file_url" db:"file_url"`
	Grade        *int      `json:"grade" db:"grade"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
}

// Certificate is issued once an enrollment is completed. Rendering to PDF
// happens outside this service; the API serves the record.
type Certificate struct {
	ID           string    `json:"id" db:"id"`
	EnrollmentID string    `json:"enrollment_id" db:"enrollment_id"`
	Serial       string    `json:"serial" db:"serial"`
	IssuedAt     time.Time `json:"issued_at" db:"issued_at"`
}
