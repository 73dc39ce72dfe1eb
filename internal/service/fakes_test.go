package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/repository"
	"github.com/courseforge/backend/internal/search"
)

// In-memory repository fakes. They enforce the same uniqueness rules the
// Postgres implementations map from pq error 23505.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	clone.UpdatedAt = time.Now()
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsEmailVerified = true
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken // keyed by token hash
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token.TokenHash]; ok {
		return repository.ErrDuplicateToken
	}
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.TokenHash] = &clone
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTokenRepo) GetByUserID(ctx context.Context, userID string) ([]*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RefreshToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, tokenHash)
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, t := range r.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(r.tokens, hash)
		}
	}
	return nil
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type fakeEmailTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.EmailToken // keyed by ID
}

func newFakeEmailTokenRepo() *fakeEmailTokenRepo {
	return &fakeEmailTokenRepo{tokens: make(map[string]*domain.EmailToken)}
}

func (r *fakeEmailTokenRepo) Create(ctx context.Context, token *domain.EmailToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone
	return nil
}

func (r *fakeEmailTokenRepo) GetByToken(ctx context.Context, token, purpose string) (*domain.EmailToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token && t.Purpose == purpose {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEmailTokenRepo) MarkUsed(ctx context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenID]
	if !ok || t.Used {
		return repository.ErrNotFound
	}
	t.Used = true
	return nil
}

func (r *fakeEmailTokenRepo) DeleteByUserAndPurpose(ctx context.Context, userID, purpose string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *fakeEmailTokenRepo) byPurpose(userID, purpose string) []*domain.EmailToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.EmailToken
	for _, t := range r.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out
}

type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]bool)}
}

func (b *fakeBlacklist) AddToken(ctx context.Context, token string, expiry time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = true
	return nil
}

func (b *fakeBlacklist) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[token], nil
}

type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendVerification(to, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "verification", to: to, token: token})
}

func (m *fakeMailer) SendPasswordReset(to, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "reset", to: to, token: token})
}

func (m *fakeMailer) SendWelcome(to, firstName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "welcome", to: to})
}

func (m *fakeMailer) byKind(kind string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.kind == kind {
			out = append(out, s)
		}
	}
	return out
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*domain.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*domain.Course)}
}

func (r *fakeCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == course.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	course.ID = uuid.New().String()
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.courses[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCourseRepo) List(ctx context.Context, onlyPublished bool, category string, limit, offset int) ([]*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Course
	for _, c := range r.courses {
		if onlyPublished && !c.IsPublished {
			continue
		}
		if category != "" && c.Category != category {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeCourseRepo) ListByTutor(ctx context.Context, tutorID string) ([]*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Course
	for _, c := range r.courses {
		if c.TutorID == tutorID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *course
	clone.UpdatedAt = time.Now()
	r.courses[course.ID] = &clone
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

// fakeModuleRepo mirrors the FK cascade: deleting a module takes its videos
// and assignments with it and decrements the course counters accordingly.
type fakeModuleRepo struct {
	mu          sync.Mutex
	modules     map[string]*domain.Module
	videos      *fakeVideoRepo
	assignments *fakeAssignmentRepo
}

func newFakeModuleRepo(videos *fakeVideoRepo, assignments *fakeAssignmentRepo) *fakeModuleRepo {
	return &fakeModuleRepo{
		modules:     make(map[string]*domain.Module),
		videos:      videos,
		assignments: assignments,
	}
}

func (r *fakeModuleRepo) Create(ctx context.Context, module *domain.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	module.ID = uuid.New().String()
	module.CreatedAt = time.Now()
	clone := *module
	r.modules[module.ID] = &clone
	return nil
}

func (r *fakeModuleRepo) GetByID(ctx context.Context, id string) (*domain.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.modules[id]; ok {
		clone := *m
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeModuleRepo) ListByCourse(ctx context.Context, courseID string) ([]*domain.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Module
	for _, m := range r.modules {
		if m.CourseID == courseID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeModuleRepo) Update(ctx context.Context, module *domain.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[module.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *module
	r.modules[module.ID] = &clone
	return nil
}

func (r *fakeModuleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.modules[id]; !ok {
		r.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(r.modules, id)
	r.mu.Unlock()

	videos, _ := r.videos.ListByModule(ctx, id)
	for _, v := range videos {
		_ = r.videos.Delete(ctx, v.ID)
	}
	assignments, _ := r.assignments.ListByModule(ctx, id)
	for _, a := range assignments {
		_ = r.assignments.Delete(ctx, a.ID)
	}
	return nil
}

// fakeAssignmentRepo mirrors the transactional counter maintenance: every
// create and delete adjusts the parent course's total_assignments.
type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]*domain.Assignment
	courses     *fakeCourseRepo
}

func newFakeAssignmentRepo(courses *fakeCourseRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]*domain.Assignment), courses: courses}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment.ID = uuid.New().String()
	assignment.CreatedAt = time.Now()
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	r.adjustCounter(assignment.CourseID, 1)
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAssignmentRepo) ListByModule(ctx context.Context, moduleID string) ([]*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Assignment
	for _, a := range r.assignments {
		if a.ModuleID == moduleID {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, assignment *domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[assignment.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.assignments, id)
	r.adjustCounter(a.CourseID, -1)
	return nil
}

func (r *fakeAssignmentRepo) adjustCounter(courseID string, delta int) {
	r.courses.mu.Lock()
	defer r.courses.mu.Unlock()
	if c, ok := r.courses.courses[courseID]; ok {
		c.TotalAssignments += delta
	}
}

// fakeVideoRepo mirrors the transactional counter maintenance: create and
// delete adjust the parent course's total_videos and total_duration.
type fakeVideoRepo struct {
	mu      sync.Mutex
	videos  map[string]*domain.Video
	courses *fakeCourseRepo
}

func newFakeVideoRepo(courses *fakeCourseRepo) *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*domain.Video), courses: courses}
}

func (r *fakeVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	video.ID = uuid.New().String()
	video.CreatedAt = time.Now()
	clone := *video
	r.videos[video.ID] = &clone
	r.adjustCounters(video.CourseID, 1, video.Duration)
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.videos[id]; ok {
		clone := *v
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVideoRepo) ListByModule(ctx context.Context, moduleID string) ([]*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Video
	for _, v := range r.videos {
		if v.ModuleID == moduleID {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) ListByCourse(ctx context.Context, courseID string) ([]*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Video
	for _, v := range r.videos {
		if v.CourseID == courseID {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[video.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *video
	r.videos[video.ID] = &clone
	return nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.videos, id)
	r.adjustCounters(v.CourseID, -1, -v.Duration)
	return nil
}

func (r *fakeVideoRepo) adjustCounters(courseID string, deltaCount, deltaDuration int) {
	r.courses.mu.Lock()
	defer r.courses.mu.Unlock()
	if c, ok := r.courses.courses[courseID]; ok {
		c.TotalVideos += deltaCount
		c.TotalDuration += deltaDuration
	}
}

type fakeEnrollmentRepo struct {
	mu           sync.Mutex
	enrollments  map[string]*domain.Enrollment
	submissions  map[string]*domain.Submission
	certificates map[string]*domain.Certificate // keyed by enrollment ID
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments:  make(map[string]*domain.Enrollment),
		submissions:  make(map[string]*domain.Submission),
		certificates: make(map[string]*domain.Certificate),
	}
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.CourseID == enrollment.CourseID && e.StudentID == enrollment.StudentID {
			return repository.ErrDuplicateEnrollment
		}
	}
	enrollment.ID = uuid.New().String()
	enrollment.EnrolledAt = time.Now()
	clone := *enrollment
	r.enrollments[enrollment.ID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.enrollments[id]; ok {
		clone := *e
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]*domain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Enrollment
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) MarkCompleted(ctx context.Context, enrollmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[enrollmentID]
	if !ok || e.CompletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	e.CompletedAt = &now
	return nil
}

func (r *fakeEnrollmentRepo) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission.ID = uuid.New().String()
	submission.SubmittedAt = time.Now()
	clone := *submission
	r.submissions[submission.ID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) GetSubmission(ctx context.Context, assignmentID, studentID string) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Submission
	for _, s := range r.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			if latest == nil || s.SubmittedAt.After(latest.SubmittedAt) {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *fakeEnrollmentRepo) ListSubmissions(ctx context.Context, assignmentID string) ([]*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Submission
	for _, s := range r.submissions {
		if s.AssignmentID == assignmentID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) CreateCertificate(ctx context.Context, certificate *domain.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certificates[certificate.EnrollmentID]; ok {
		return fmt.Errorf("certificate already exists for enrollment %s", certificate.EnrollmentID)
	}
	certificate.ID = uuid.New().String()
	certificate.IssuedAt = time.Now()
	clone := *certificate
	r.certificates[certificate.EnrollmentID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) GetCertificateByEnrollment(ctx context.Context, enrollmentID string) (*domain.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.certificates[enrollmentID]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

type fakeSearcher struct {
	mu      sync.Mutex
	indexed map[string]*domain.Course
	deleted []string
	hits    []search.CourseDoc
	err     error
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{indexed: make(map[string]*domain.Course)}
}

func (s *fakeSearcher) Index(ctx context.Context, course *domain.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	clone := *course
	s.indexed[course.ID] = &clone
	return nil
}

func (s *fakeSearcher) Delete(ctx context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.indexed, courseID)
	s.deleted = append(s.deleted, courseID)
	return nil
}

func (s *fakeSearcher) Search(ctx context.Context, query string, from, size int) (int64, []search.CourseDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, nil, s.err
	}
	return int64(len(s.hits)), s.hits, nil
}
