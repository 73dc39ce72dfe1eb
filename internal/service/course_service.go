package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/media"
	"github.com/courseforge/backend/internal/repository"
	"github.com/courseforge/backend/internal/search"
)

// CourseSearcher is the search surface the course service needs.
// *search.CourseIndex is the Elasticsearch-backed implementation.
type CourseSearcher interface {
	Index(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, courseID string) error
	Search(ctx context.Context, query string, from, size int) (int64, []search.CourseDoc, error)
}

// courseService implements CourseService interface
type courseService struct {
	courseRepo     repository.CourseRepository
	moduleRepo     repository.ModuleRepository
	assignmentRepo repository.AssignmentRepository
	index          CourseSearcher
	logger         *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(
	courseRepo repository.CourseRepository,
	moduleRepo repository.ModuleRepository,
	assignmentRepo repository.AssignmentRepository,
	index CourseSearcher,
	logger *zap.Logger,
) CourseService {
	return &courseService{
		courseRepo:     courseRepo,
		moduleRepo:     moduleRepo,
		assignmentRepo: assignmentRepo,
		index:          index,
		logger:         logger,
	}
}

// ownedCourse loads a course and verifies the caller owns it. Ownership is
// checked before any child lookup so a foreign tutor learns nothing about
// the course's contents.
func (s *courseService) ownedCourse(ctx context.Context, tutorID, courseID string) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.TutorID != tutorID {
		return nil, fmt.Errorf("course %s is not owned by caller: %w", courseID, ErrForbidden)
	}
	return course, nil
}

// reindex pushes the course into the search index. Index writes never fail
// the request; the database row is the source of truth.
func (s *courseService) reindex(ctx context.Context, course *domain.Course) {
	if err := s.index.Index(ctx, course); err != nil {
		s.logger.Error("failed to index course", zap.String("course_id", course.ID), zap.Error(err))
	}
}

// CreateCourse creates a draft or published course for a tutor
func (s *courseService) CreateCourse(ctx context.Context, tutorID string, req *dto.CourseRequest) (*domain.Course, error) {
	course := &domain.Course{
		TutorID:     tutorID,
		Title:       req.Title,
		Slug:        media.Slug(req.Title),
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		IsPublished: req.IsPublished,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, fmt.Errorf("course with title %q already exists: %w", req.Title, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.reindex(ctx, course)
	return course, nil
}

// GetCourse gets a course by ID
func (s *courseService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// ListCourses lists courses, optionally filtered to published ones or a category
func (s *courseService) ListCourses(ctx context.Context, onlyPublished bool, category string, limit, offset int) ([]*domain.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	courses, err := s.courseRepo.List(ctx, onlyPublished, category, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// ListOwnCourses lists every course the tutor owns, drafts included
func (s *courseService) ListOwnCourses(ctx context.Context, tutorID string) ([]*domain.Course, error) {
	courses, err := s.courseRepo.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutor courses: %w", err)
	}
	return courses, nil
}

// SearchCourses queries the search index and hydrates hits from Postgres.
// A course deleted between indexing and hydration is silently skipped.
func (s *courseService) SearchCourses(ctx context.Context, query string, from, size int) (int64, []*domain.Course, error) {
	total, docs, err := s.index.Search(ctx, query, from, size)
	if err != nil {
		return 0, nil, fmt.Errorf("course search unavailable: %w", ErrUpstream)
	}

	courses := make([]*domain.Course, 0, len(docs))
	for _, doc := range docs {
		course, err := s.courseRepo.GetByID(ctx, doc.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return 0, nil, fmt.Errorf("failed to hydrate search hit: %w", err)
		}
		courses = append(courses, course)
	}

	return total, courses, nil
}

// UpdateCourse updates an owned course
func (s *courseService) UpdateCourse(ctx context.Context, tutorID, courseID string, req *dto.CourseRequest) (*domain.Course, error) {
	course, err := s.ownedCourse(ctx, tutorID, courseID)
	if err != nil {
		return nil, err
	}

	// The slug is fixed at creation: CDN media paths derive from it, so
	// retitling a course must not orphan already-uploaded assets.
	course.Title = req.Title
	course.Description = req.Description
	course.Category = req.Category
	course.PriceCents = req.PriceCents
	course.IsPublished = req.IsPublished

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.reindex(ctx, course)
	return course, nil
}

// DeleteCourse deletes an owned course; children go with it via FK cascade
func (s *courseService) DeleteCourse(ctx context.Context, tutorID, courseID string) error {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	if err := s.index.Delete(ctx, courseID); err != nil {
		s.logger.Error("failed to remove course from index", zap.String("course_id", courseID), zap.Error(err))
	}

	return nil
}

// CreateModule adds a module to an owned course
func (s *courseService) CreateModule(ctx context.Context, tutorID, courseID string, req *dto.ModuleRequest) (*domain.Module, error) {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return nil, err
	}

	module := &domain.Module{
		CourseID: courseID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := s.moduleRepo.Create(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	return module, nil
}

// ListModules lists a course's modules in position order
func (s *courseService) ListModules(ctx context.Context, courseID string) ([]*domain.Module, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	modules, err := s.moduleRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, nil
}

// UpdateModule updates a module of an owned course
func (s *courseService) UpdateModule(ctx context.Context, tutorID, courseID, moduleID string, req *dto.ModuleRequest) (*domain.Module, error) {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return nil, err
	}

	module, err := s.courseModule(ctx, courseID, moduleID)
	if err != nil {
		return nil, err
	}

	module.Title = req.Title
	module.Position = req.Position
	if err := s.moduleRepo.Update(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	return module, nil
}

// DeleteModule deletes a module of an owned course
func (s *courseService) DeleteModule(ctx context.Context, tutorID, courseID, moduleID string) error {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return err
	}

	if _, err := s.courseModule(ctx, courseID, moduleID); err != nil {
		return err
	}

	if err := s.moduleRepo.Delete(ctx, moduleID); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}
	return nil
}

// courseModule loads a module and verifies it belongs to the course
func (s *courseService) courseModule(ctx context.Context, courseID, moduleID string) (*domain.Module, error) {
	module, err := s.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("module %s: %w", moduleID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	if module.CourseID != courseID {
		return nil, fmt.Errorf("module %s: %w", moduleID, ErrNotFound)
	}
	return module, nil
}

// CreateAssignment adds an assignment to a module of an owned course
func (s *courseService) CreateAssignment(ctx context.Context, tutorID, courseID, moduleID string, req *dto.AssignmentRequest) (*domain.Assignment, error) {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return nil, err
	}

	if _, err := s.courseModule(ctx, courseID, moduleID); err != nil {
		return nil, err
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	assignment := &domain.Assignment{
		CourseID:    courseID,
		ModuleID:    moduleID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return assignment, nil
}

// ListAssignments lists a module's assignments
func (s *courseService) ListAssignments(ctx context.Context, moduleID string) ([]*domain.Assignment, error) {
	assignments, err := s.assignmentRepo.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// UpdateAssignment updates an assignment of an owned course
func (s *courseService) UpdateAssignment(ctx context.Context, tutorID, courseID, assignmentID string, req *dto.AssignmentRequest) (*domain.Assignment, error) {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return nil, err
	}

	assignment, err := s.courseAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return nil, err
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	assignment.Title = req.Title
	assignment.Description = req.Description
	assignment.Deadline = deadline
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return assignment, nil
}

// DeleteAssignment deletes an assignment of an owned course
func (s *courseService) DeleteAssignment(ctx context.Context, tutorID, courseID, assignmentID string) error {
	if _, err := s.ownedCourse(ctx, tutorID, courseID); err != nil {
		return err
	}

	if _, err := s.courseAssignment(ctx, courseID, assignmentID); err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// courseAssignment loads an assignment and verifies it belongs to the course
func (s *courseService) courseAssignment(ctx context.Context, courseID, assignmentID string) (*domain.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment.CourseID != courseID {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	return assignment, nil
}

func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, fmt.Errorf("deadline must be RFC3339: %w", ErrValidation)
	}
	return &t, nil
}
