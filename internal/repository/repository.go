package repository

import (
	"github.com/courseforge/backend/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User       UserRepository
	Token      TokenRepository
	EmailToken EmailTokenRepository
	Course     CourseRepository
	Module     ModuleRepository
	Video      VideoRepository
	Assignment AssignmentRepository
	Enrollment EnrollmentRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Token:      NewTokenRepository(db),
		EmailToken: NewEmailTokenRepository(db),
		Course:     NewCourseRepository(db),
		Module:     NewModuleRepository(db),
		Video:      NewVideoRepository(db),
		Assignment: NewAssignmentRepository(db),
		Enrollment: NewEnrollmentRepository(db),
	}
}
