package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/dto"
)

// doJSON issues an authenticated JSON request and returns the response.
func (s *Suite) doJSON(method, path, token string, payload any) *http.Response {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, s.BaseURL+path, body)
	s.Require().NoError(err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) createCourse(token string, published bool) *domain.Course {
	resp := s.doJSON("POST", "/api/v1/tutor/courses", token, dto.CourseRequest{
		Title:       "Advanced Go Programming",
		Description: "Concurrency, generics and production services.",
		Category:    "programming",
		PriceCents:  4999,
		IsPublished: published,
	})
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode, "Course creation should succeed")

	var course domain.Course
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&course))
	return &course
}

func (s *Suite) TestCreateCourse_Success() {
	tutor, _ := s.register("course-tutor@example.com", "Password123", domain.RoleTutor)

	course := s.createCourse(tutor.AccessToken, true)

	s.NotEmpty(course.ID)
	s.Equal("advanced-go-programming", course.Slug)
	s.Equal(tutor.User.ID, course.TutorID)
	s.Zero(course.TotalVideos)
	s.Zero(course.TotalAssignments)
}

func (s *Suite) TestCreateCourse_StudentForbidden() {
	student, _ := s.register("not-a-tutor@example.com", "Password123", "")

	resp := s.doJSON("POST", "/api/v1/tutor/courses", student.AccessToken, dto.CourseRequest{
		Title:       "Sneaky Course",
		Description: "Students cannot author courses.",
		Category:    "programming",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestListCourses_OnlyPublished() {
	tutor, _ := s.register("list-tutor@example.com", "Password123", domain.RoleTutor)
	published := s.createCourse(tutor.AccessToken, true)

	draftResp := s.doJSON("POST", "/api/v1/tutor/courses", tutor.AccessToken, dto.CourseRequest{
		Title:       "Unfinished Draft",
		Description: "Not visible in the public catalog yet.",
		Category:    "programming",
	})
	draftResp.Body.Close()
	s.Require().Equal(http.StatusCreated, draftResp.StatusCode)

	resp, err := http.Get(s.BaseURL + "/api/v1/courses")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var courses []*domain.Course
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&courses))
	s.Require().Len(courses, 1)
	s.Equal(published.ID, courses[0].ID)

	// The tutor's own listing includes drafts
	ownResp := s.doJSON("GET", "/api/v1/tutor/courses", tutor.AccessToken, nil)
	defer ownResp.Body.Close()
	var own []*domain.Course
	s.Require().NoError(json.NewDecoder(ownResp.Body).Decode(&own))
	s.Len(own, 2)
}

func (s *Suite) TestUpdateCourse_ForeignTutorForbidden() {
	owner, _ := s.register("owner@example.com", "Password123", domain.RoleTutor)
	other, _ := s.register("other@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(owner.AccessToken, true)

	resp := s.doJSON("PUT", "/api/v1/tutor/courses/"+course.ID, other.AccessToken, dto.CourseRequest{
		Title:       "Hijacked Title",
		Description: "This update must be rejected.",
		Category:    "programming",
	})
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestDeleteCourse_Success() {
	tutor, _ := s.register("delete-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)

	resp := s.doJSON("DELETE", "/api/v1/tutor/courses/"+course.ID, tutor.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	getResp, err := http.Get(s.BaseURL + "/api/v1/courses/" + course.ID)
	s.Require().NoError(err)
	defer getResp.Body.Close()
	s.Equal(http.StatusNotFound, getResp.StatusCode)
}

func (s *Suite) TestModuleAndAssignmentLifecycle() {
	tutor, _ := s.register("module-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)

	moduleResp := s.doJSON("POST", "/api/v1/tutor/courses/"+course.ID+"/modules", tutor.AccessToken, dto.ModuleRequest{
		Title:    "Week 1: Goroutines",
		Position: 1,
	})
	defer moduleResp.Body.Close()
	s.Require().Equal(http.StatusCreated, moduleResp.StatusCode)

	var module domain.Module
	s.Require().NoError(json.NewDecoder(moduleResp.Body).Decode(&module))
	s.Equal(course.ID, module.CourseID)

	deadline := "2026-12-31T23:59:59Z"
	assignmentResp := s.doJSON("POST",
		fmt.Sprintf("/api/v1/tutor/courses/%s/modules/%s/assignments", course.ID, module.ID),
		tutor.AccessToken,
		dto.AssignmentRequest{
			Title:       "Build a worker pool",
			Description: "Implement a bounded worker pool with graceful shutdown.",
			Deadline:    &deadline,
		},
	)
	defer assignmentResp.Body.Close()
	s.Require().Equal(http.StatusCreated, assignmentResp.StatusCode)

	var assignment domain.Assignment
	s.Require().NoError(json.NewDecoder(assignmentResp.Body).Decode(&assignment))
	s.Require().NotNil(assignment.Deadline)

	// Assignment creation bumps the denormalized counter
	courseResp, err := http.Get(s.BaseURL + "/api/v1/courses/" + course.ID)
	s.Require().NoError(err)
	defer courseResp.Body.Close()
	var refreshed domain.Course
	s.Require().NoError(json.NewDecoder(courseResp.Body).Decode(&refreshed))
	s.Equal(1, refreshed.TotalAssignments)

	modulesResp, err := http.Get(s.BaseURL + "/api/v1/courses/" + course.ID + "/modules")
	s.Require().NoError(err)
	defer modulesResp.Body.Close()
	var modules []*domain.Module
	s.Require().NoError(json.NewDecoder(modulesResp.Body).Decode(&modules))
	s.Len(modules, 1)
}

func (s *Suite) TestDeleteModule_AdjustsCounters() {
	tutor, _ := s.register("cascade-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)

	makeModule := func(title string, position int) domain.Module {
		resp := s.doJSON("POST", "/api/v1/tutor/courses/"+course.ID+"/modules", tutor.AccessToken, dto.ModuleRequest{
			Title:    title,
			Position: position,
		})
		defer resp.Body.Close()
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
		var module domain.Module
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&module))
		return module
	}
	makeAssignment := func(moduleID, title string) {
		resp := s.doJSON("POST",
			fmt.Sprintf("/api/v1/tutor/courses/%s/modules/%s/assignments", course.ID, moduleID),
			tutor.AccessToken,
			dto.AssignmentRequest{Title: title, Description: "Submit your solution archive."},
		)
		defer resp.Body.Close()
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
	}

	doomed := makeModule("Week 1: Goroutines", 1)
	kept := makeModule("Week 2: Generics", 2)
	makeAssignment(doomed.ID, "Build a worker pool")
	makeAssignment(doomed.ID, "Pipelines and fan-out")
	makeAssignment(kept.ID, "Generic cache")

	// Deleting the module cascades to its assignments, so the counter
	// must drop by exactly the module's share
	deleteResp := s.doJSON("DELETE",
		fmt.Sprintf("/api/v1/tutor/courses/%s/modules/%s", course.ID, doomed.ID),
		tutor.AccessToken, nil,
	)
	defer deleteResp.Body.Close()
	s.Require().Equal(http.StatusOK, deleteResp.StatusCode)

	courseResp, err := http.Get(s.BaseURL + "/api/v1/courses/" + course.ID)
	s.Require().NoError(err)
	defer courseResp.Body.Close()
	var refreshed domain.Course
	s.Require().NoError(json.NewDecoder(courseResp.Body).Decode(&refreshed))
	s.Equal(1, refreshed.TotalAssignments)
	s.Zero(refreshed.TotalVideos)
	s.Zero(refreshed.TotalDuration)

	modulesResp, err := http.Get(s.BaseURL + "/api/v1/courses/" + course.ID + "/modules")
	s.Require().NoError(err)
	defer modulesResp.Body.Close()
	var modules []*domain.Module
	s.Require().NoError(json.NewDecoder(modulesResp.Body).Decode(&modules))
	s.Require().Len(modules, 1)
	s.Equal(kept.ID, modules[0].ID)
}

func (s *Suite) TestCreateAssignment_BadDeadline() {
	tutor, _ := s.register("deadline-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)

	moduleResp := s.doJSON("POST", "/api/v1/tutor/courses/"+course.ID+"/modules", tutor.AccessToken, dto.ModuleRequest{
		Title: "Week 1",
	})
	defer moduleResp.Body.Close()
	var module domain.Module
	s.Require().NoError(json.NewDecoder(moduleResp.Body).Decode(&module))

	deadline := "next tuesday"
	resp := s.doJSON("POST",
		fmt.Sprintf("/api/v1/tutor/courses/%s/modules/%s/assignments", course.ID, module.ID),
		tutor.AccessToken,
		dto.AssignmentRequest{
			Title:       "Late assignment",
			Description: "Deadline parsing should reject this.",
			Deadline:    &deadline,
		},
	)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestEnroll_Success() {
	tutor, _ := s.register("enroll-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)
	student, _ := s.register("enroll-student@example.com", "Password123", "")

	resp := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/enroll", student.AccessToken, nil)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var enrollment domain.Enrollment
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&enrollment))
	s.Equal(course.ID, enrollment.CourseID)
	s.Equal(student.User.ID, enrollment.StudentID)
	s.Nil(enrollment.CompletedAt)

	// Enrolling twice conflicts
	dup := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/enroll", student.AccessToken, nil)
	defer dup.Body.Close()
	s.Equal(http.StatusConflict, dup.StatusCode)

	listResp := s.doJSON("GET", "/api/v1/student/enrollments", student.AccessToken, nil)
	defer listResp.Body.Close()
	var enrollments []*domain.Enrollment
	s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&enrollments))
	s.Len(enrollments, 1)
}

func (s *Suite) TestEnroll_UnpublishedCourse() {
	tutor, _ := s.register("draft-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, false)
	student, _ := s.register("draft-student@example.com", "Password123", "")

	resp := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/enroll", student.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestCompleteCourse_IssuesCertificate() {
	tutor, _ := s.register("cert-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)
	student, _ := s.register("cert-student@example.com", "Password123", "")

	enrollResp := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/enroll", student.AccessToken, nil)
	enrollResp.Body.Close()
	s.Require().Equal(http.StatusCreated, enrollResp.StatusCode)

	completeResp := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/complete", student.AccessToken, nil)
	defer completeResp.Body.Close()
	s.Require().Equal(http.StatusOK, completeResp.StatusCode)

	var cert domain.Certificate
	s.Require().NoError(json.NewDecoder(completeResp.Body).Decode(&cert))
	s.True(strings.HasPrefix(cert.Serial, "CERT-"), "serial %q should carry the CERT- prefix", cert.Serial)

	// Completing again is idempotent and returns the same certificate
	again := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/complete", student.AccessToken, nil)
	defer again.Body.Close()
	s.Require().Equal(http.StatusOK, again.StatusCode)

	var cert2 domain.Certificate
	s.Require().NoError(json.NewDecoder(again.Body).Decode(&cert2))
	s.Equal(cert.Serial, cert2.Serial)

	certResp := s.doJSON("GET", "/api/v1/student/courses/"+course.ID+"/certificate", student.AccessToken, nil)
	defer certResp.Body.Close()
	s.Equal(http.StatusOK, certResp.StatusCode)
}

func (s *Suite) TestSubmitAssignment_RequiresEnrollment() {
	tutor, _ := s.register("submit-tutor@example.com", "Password123", domain.RoleTutor)
	course := s.createCourse(tutor.AccessToken, true)

	moduleResp := s.doJSON("POST", "/api/v1/tutor/courses/"+course.ID+"/modules", tutor.AccessToken, dto.ModuleRequest{Title: "Week 1"})
	defer moduleResp.Body.Close()
	var module domain.Module
	s.Require().NoError(json.NewDecoder(moduleResp.Body).Decode(&module))

	assignmentResp := s.doJSON("POST",
		fmt.Sprintf("/api/v1/tutor/courses/%s/modules/%s/assignments", course.ID, module.ID),
		tutor.AccessToken,
		dto.AssignmentRequest{Title: "Homework", Description: "Submit your solution archive."},
	)
	defer assignmentResp.Body.Close()
	var assignment domain.Assignment
	s.Require().NoError(json.NewDecoder(assignmentResp.Body).Decode(&assignment))

	outsider, _ := s.register("outsider@example.com", "Password123", "")
	submission := dto.SubmissionRequest{FileURL: "https://files.example.com/solution.zip"}

	resp := s.doJSON("POST", "/api/v1/student/assignments/"+assignment.ID+"/submissions", outsider.AccessToken, submission)
	defer resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)

	// After enrolling, the same submission goes through
	enrollResp := s.doJSON("POST", "/api/v1/student/courses/"+course.ID+"/enroll", outsider.AccessToken, nil)
	enrollResp.Body.Close()
	s.Require().Equal(http.StatusCreated, enrollResp.StatusCode)

	retry := s.doJSON("POST", "/api/v1/student/assignments/"+assignment.ID+"/submissions", outsider.AccessToken, submission)
	defer retry.Body.Close()
	s.Require().Equal(http.StatusCreated, retry.StatusCode)

	var stored domain.Submission
	s.Require().NoError(json.NewDecoder(retry.Body).Decode(&stored))
	s.Equal(assignment.ID, stored.AssignmentID)
	s.Nil(stored.Grade)
}
