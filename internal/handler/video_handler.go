package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courseforge/backend/internal/dto"
	"github.com/courseforge/backend/internal/service"
)

// VideoHandler handles video upload and management requests
type VideoHandler struct {
	videoService service.VideoService
	uploadDir    string
	logger       *zap.Logger
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(videoService service.VideoService, uploadDir string, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
		uploadDir:    uploadDir,
		logger:       logger,
	}
}

// Upload handles a multipart video upload for a course module.
// The file is spooled to disk first so the CDN upload can be retried and,
// for large files, re-read in fixed-size chunks.
// @Summary Upload a video
// @Tags tutor
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Param title formData string true "Video title"
// @Param is_demo formData bool false "Mark as the course demo video"
// @Param video formData file true "Video file"
// @Success 201 {object} dto.VideoUploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/modules/{moduleId}/videos [post]
func (h *VideoHandler) Upload(c *gin.Context) {
	userID, _ := currentUserID(c)

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "title is required",
		})
		return
	}
	isDemo, _ := strconv.ParseBool(c.DefaultPostForm("is_demo", "false"))

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "video file is required",
		})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Error("failed to create upload dir", zap.Error(err))
		respondError(c, err)
		return
	}

	tempPath := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		h.logger.Error("failed to spool uploaded file", zap.Error(err))
		respondError(c, err)
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			h.logger.Warn("failed to remove spooled upload", zap.String("path", tempPath), zap.Error(err))
		}
	}()

	video, err := h.videoService.UploadVideo(c.Request.Context(), userID,
		c.Param("id"), c.Param("moduleId"), title, tempPath, isDemo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.VideoUploadResponse{Video: video})
}

// ListVideos lists a course's videos
// @Summary List course videos
// @Tags courses
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {array} domain.Video
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/videos [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoService.ListVideos(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, videos)
}

// UpdateVideo updates video metadata
// @Summary Update video metadata
// @Tags tutor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param videoId path string true "Video ID"
// @Param request body dto.VideoUpdateRequest true "Video metadata"
// @Success 200 {object} domain.Video
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/videos/{videoId} [put]
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req dto.VideoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	video, err := h.videoService.UpdateVideo(c.Request.Context(), userID, c.Param("id"), c.Param("videoId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, video)
}

// DeleteVideo removes a video and its CDN asset
// @Summary Delete a video
// @Tags tutor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Course ID"
// @Param videoId path string true "Video ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tutor/courses/{id}/videos/{videoId} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID, _ := currentUserID(c)

	if err := h.videoService.DeleteVideo(c.Request.Context(), userID, c.Param("id"), c.Param("videoId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Video deleted",
	})
}

// DemoVideo returns the publicly watchable demo video of a course
// @Summary Get course demo video
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} media.Resource
// @Failure 404 {object} dto.ErrorResponse
// @Router /courses/{id}/demo [get]
func (h *VideoHandler) DemoVideo(c *gin.Context) {
	resource, err := h.videoService.DemoVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}
