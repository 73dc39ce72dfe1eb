package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/service"
)

// CourseHandler handles course catalog and tutor course management requests
type CourseHandler struct {
	courseService service.CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
	}
}

// ListCourses lists published courses for the public catalog
// @Summary List published courses
// @Tags courses
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Full-text search query"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} domain.Course
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if query := c.Query("search"); query != "" {
		_, courses, err := h.courseService.SearchCourses(c.Request.Context(), query, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, courses)
		return
	}

	courses, err := h.courseService.ListCourses(c.Request.Context(), true, c.Query("category"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// SearchCourses runs a fuzzy full-text search over published courses
// @Summary Search courses
// @Tags courses
// @Produce json
// @Param q query string true "Search query"
// @Param from query int false "Result offset"
// @Param size query int false "Page size"
// @Success 200 {object} dto.CourseSearchResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /courses/search [get]
func (h *CourseHandler) SearchCourses(c *gin.Context) {
	from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	total, courses, err := h.courseService.SearchCourses(c.Request.Context(), c.Query("q"), from, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CourseSearchResponse{
		Total:   total,
		Courses: courses,
	})
}

// GetCourse returns one course with its denormalized totals
// @Summary Get a course
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} domain.Course
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListModules lists a course's modules
// @Summary List course modules
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {array} domain.Module
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/modules [get]
func (h *CourseHandler) ListModules(c *gin.Context) {
	modules, err := h.courseService.ListModules(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, modules)
}

// CreateCourse creates a course owned by the calling tutor
// @Summary Create a course
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CourseRequest true "Course definition"
// @Success 201 {object} domain.Course
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /tutor/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListOwnCourses lists the calling tutor's courses, drafts included
// @Summary List own courses
// @Tags tutor
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Course
// @Router /tutor/courses [get]
func (h *CourseHandler) ListOwnCourses(c *gin.Context) {
	userID, _ := currentUserID(c)

	courses, err := h.courseService.ListOwnCourses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// UpdateCourse updates an owned course
// @Summary Update a course
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body dto.CourseRequest true "Course definition"
// @Success 200 {object} domain.Course
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes an owned course and everything under it
// @Summary Delete a course
// @Tags tutor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := h.courseService.DeleteCourse(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Course deleted",
	})
}

// CreateModule adds a module to an owned course
// @Summary Create a module
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body dto.ModuleRequest true "Module definition"
// @Success 201 {object} domain.Module
// @Failure 403 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/modules [post]
func (h *CourseHandler) CreateModule(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	module, err := h.courseService.CreateModule(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, module)
}

// UpdateModule updates a module of an owned course
// @Summary Update a module
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.ModuleRequest true "Module definition"
// @Success 200 {object} domain.Module
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/modules/{moduleId} [put]
func (h *CourseHandler) UpdateModule(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.ModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	module, err := h.courseService.UpdateModule(c.Request.Context(), userID, c.Param("id"), c.Param("moduleId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, module)
}

// DeleteModule deletes a module of an owned course
// @Summary Delete a module
// @Tags tutor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/modules/{moduleId} [delete]
func (h *CourseHandler) DeleteModule(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := h.courseService.DeleteModule(c.Request.Context(), userID, c.Param("id"), c.Param("moduleId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Module deleted",
	})
}

// CreateAssignment adds an assignment to a module of an owned course
// @Summary Create an assignment
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param request body dto.AssignmentRequest true "Assignment definition"
// @Success 201 {object} domain.Assignment
// @Failure 403 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/modules/{moduleId}/assignments [post]
func (h *CourseHandler) CreateAssignment(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	assignment, err := h.courseService.CreateAssignment(c.Request.Context(), userID, c.Param("id"), c.Param("moduleId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments lists a module's assignments
// @Summary List module assignments
// @Tags courses
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {array} domain.Assignment
// @Router /courses/{id}/modules/{moduleId}/assignments [get]
func (h *CourseHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.courseService.ListAssignments(c.Request.Context(), c.Param("moduleId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// UpdateAssignment updates an assignment of an owned course
// @Summary Update an assignment
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param assignmentId path string true "Assignment ID"
// @Param request body dto.AssignmentRequest true "Assignment definition"
// @Success 200 {object} domain.Assignment
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/assignments/{assignmentId} [put]
func (h *CourseHandler) UpdateAssignment(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	assignment, err := h.courseService.UpdateAssignment(c.Request.Context(), userID, c.Param("id"), c.Param("assignmentId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment deletes an assignment of an owned course
// @Summary Delete an assignment
// @Tags tutor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/assignments/{assignmentId} [delete]
func (h *CourseHandler) DeleteAssignment(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := h.courseService.DeleteAssignment(c.Request.Context(), userID, c.Param("id"), c.Param("assignmentId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Assignment deleted",
	})
}
