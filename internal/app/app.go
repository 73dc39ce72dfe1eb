package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/courseforge/backend/internal/config"
	"github.com/courseforge/backend/internal/domain"
	"github.com/courseforge/backend/internal/handler"
	"github.com/courseforge/backend/internal/mailer"
	"github.com/courseforge/backend/internal/media"
	"github.com/courseforge/backend/internal/repository"
	"github.com/courseforge/backend/internal/search"
	"github.com/courseforge/backend/internal/service"
	"github.com/courseforge/backend/internal/utils"
	"github.com/courseforge/backend/pkg/observability"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	mail := mailer.New(cfg.SMTP, cfg.AppURL, infra.Logger())

	mediaClient := media.NewClient(
		cfg.Media.BaseURL,
		cfg.Media.CloudName,
		cfg.Media.APIKey,
		cfg.Media.APISecret,
	)
	uploader := media.NewUploader(mediaClient, cfg.Media.RootFolder, cfg.Media.MaxAttempts, infra.Logger())

	courseIndex := search.NewCourseIndex(infra.Elastic(), cfg.Elastic.Index)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		repos.EmailToken,
		jwtManager,
		blacklistService,
		mail,
		infra.Logger(),
		cfg.Security.BCryptCost,
		cfg.JWT.RefreshTokenExpiry.Duration,
		cfg.Security.EmailTokenExpiry.Duration,
		cfg.Security.ResetTokenExpiry.Duration,
	)
	courseService := service.NewCourseService(repos.Course, repos.Module, repos.Assignment, courseIndex, infra.Logger())
	videoService := service.NewVideoService(repos.Video, repos.Course, repos.Module, uploader, infra.Logger())
	enrollmentService := service.NewEnrollmentService(repos.Enrollment, repos.Course, repos.Assignment, infra.Logger())

	handlers := &handlers{
		auth:    handler.NewAuthHandler(authService, cfg.Server.UploadDir),
		course:  handler.NewCourseHandler(courseService),
		video:   handler.NewVideoHandler(videoService, cfg.Server.UploadDir, infra.Logger()),
		student: handler.NewStudentHandler(enrollmentService, cfg.Server.UploadDir),
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("courseforge"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, handlers, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

type handlers struct {
	auth    *handler.AuthHandler
	course  *handler.CourseHandler
	video   *handler.VideoHandler
	student *handler.StudentHandler
}

// uploadDeadline bounds the whole upload request, including CDN retries.
// Server read/write timeouts are disabled per-request here because a chunked
// upload of a large file legitimately runs for minutes.
func uploadDeadline(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h *handlers,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)
	router.Static("/uploads", cfg.Server.UploadDir)

	authRequired := handler.AuthMiddleware(authService)
	tutorOnly := handler.RequireRoles(domain.RoleTutor, domain.RoleAdmin)
	studentOnly := handler.RequireRoles(domain.RoleStudent, domain.RoleAdmin)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				h.auth.Register,
			)
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				h.auth.Login,
			)
			auth.POST("/refresh", h.auth.Refresh)
			auth.POST("/forgot-password",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				h.auth.ForgotPassword,
			)
			auth.POST("/reset-password", h.auth.ResetPassword)
			auth.POST("/verify-email", h.auth.VerifyEmail)
			auth.POST("/logout", authRequired, h.auth.Logout)
			auth.GET("/me", authRequired, h.auth.GetMe)
			auth.PUT("/me", authRequired, h.auth.UpdateProfile)
			auth.PUT("/password", authRequired, h.auth.ChangePassword)
		}

		courses := api.Group("/courses", handler.OptionalAuthMiddleware(authService))
		{
			courses.GET("", h.course.ListCourses)
			courses.GET("/search", h.course.SearchCourses)
			courses.GET("/:id", h.course.GetCourse)
			courses.GET("/:id/modules", h.course.ListModules)
			courses.GET("/:id/demo", h.video.DemoVideo)
			courses.GET("/:id/videos", authRequired, h.video.ListVideos)
			courses.GET("/:id/modules/:moduleId/assignments", authRequired, h.course.ListAssignments)
		}

		tutor := api.Group("/tutor", authRequired, tutorOnly)
		{
			tutor.POST("/courses", h.course.CreateCourse)
			tutor.GET("/courses", h.course.ListOwnCourses)
			tutor.PUT("/courses/:id", h.course.UpdateCourse)
			tutor.DELETE("/courses/:id", h.course.DeleteCourse)

			tutor.POST("/courses/:id/modules", h.course.CreateModule)
			tutor.PUT("/courses/:id/modules/:moduleId", h.course.UpdateModule)
			tutor.DELETE("/courses/:id/modules/:moduleId", h.course.DeleteModule)

			tutor.POST("/courses/:id/modules/:moduleId/assignments", h.course.CreateAssignment)
			tutor.PUT("/courses/:id/assignments/:assignmentId", h.course.UpdateAssignment)
			tutor.DELETE("/courses/:id/assignments/:assignmentId", h.course.DeleteAssignment)

			tutor.POST("/courses/:id/modules/:moduleId/videos",
				uploadDeadline(cfg.Server.UploadTimeout.Duration),
				h.video.Upload,
			)
			tutor.PUT("/courses/:id/videos/:videoId", h.video.UpdateVideo)
			tutor.DELETE("/courses/:id/videos/:videoId", h.video.DeleteVideo)
		}

		student := api.Group("/student", authRequired, studentOnly)
		{
			student.POST("/courses/:id/enroll", h.student.Enroll)
			student.GET("/enrollments", h.student.ListEnrollments)
			student.POST("/assignments/:id/submissions", h.student.SubmitAssignment)
			student.POST("/courses/:id/complete", h.student.CompleteCourse)
			student.GET("/courses/:id/certificate", h.student.GetCertificate)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
