package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/service"
)

// StudentHandler handles enrollment, submission and certificate requests
type StudentHandler struct {
	enrollmentService service.EnrollmentService
	uploadDir         string
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(enrollmentService service.EnrollmentService, uploadDir string) *StudentHandler {
	return &StudentHandler{
		enrollmentService: enrollmentService,
		uploadDir:         uploadDir,
	}
}

// Enroll enrolls the calling student in a published course
// @Summary Enroll in a course
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} domain.Enrollment
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /student/courses/{id}/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	userID, _ := currentUserID(c)

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// ListEnrollments lists the calling student's enrollments
// @Summary List own enrollments
// @Tags student
// @Security BearerAuth
// @Produce json
// @Success 200 {array} domain.Enrollment
// @Router /student/enrollments [get]
func (h *StudentHandler) ListEnrollments(c *gin.Context) {
	userID, _ := currentUserID(c)

	enrollments, err := h.enrollmentService.ListEnrollments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// SubmitAssignment records a submission for an enrolled student.
// A multipart body uploads the answer file into local storage; a JSON body
// references a file hosted elsewhere.
// @Summary Submit an assignment
// @Tags student
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Assignment ID"
// @Param request body dto.SubmissionRequest false "Submission"
// @Param file formData file false "Answer file"
// @Success 201 {object} domain.Submission
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/assignments/{id}/submissions [post]
func (h *StudentHandler) SubmitAssignment(c *gin.Context) {
	userID, _ := currentUserID(c)

	var fileURL string
	if isMultipart(c) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Message: "file is required",
			})
			return
		}

		stored, err := storeUpload(c, file, h.uploadDir, "submissions")
		if err != nil {
			respondError(c, err)
			return
		}
		fileURL = stored
	} else {
		var req dto.SubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		fileURL = req.FileURL
	}

	submission, err := h.enrollmentService.SubmitAssignment(c.Request.Context(), userID, c.Param("id"), fileURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// CompleteCourse marks the enrollment completed and issues the certificate
// @Summary Complete a course
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} domain.Certificate
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/courses/{id}/complete [post]
func (h *StudentHandler) CompleteCourse(c *gin.Context) {
	userID, _ := currentUserID(c)

	certificate, err := h.enrollmentService.CompleteCourse(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}

// GetCertificate returns the certificate of a completed course
// @Summary Get course certificate
// @Tags student
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} domain.Certificate
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/courses/{id}/certificate [get]
func (h *StudentHandler) GetCertificate(c *gin.Context) {
	userID, _ := currentUserID(c)

	certificate, err := h.enrollmentService.GetCertificate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}
