package server

import (
	"context"
	"net/http"
	"time"

	"github.com/eduhub/api/internal/config"
	coursedomain "github.com/eduhub/api/internal/course/domain"
	enrollmentdomain "github.com/eduhub/api/internal/enrollment/domain"
	"github.com/eduhub/api/internal/providers/pdf"
	"github.com/eduhub/api/internal/ratelimit"
	userdomain "github.com/eduhub/api/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewMetrics),
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	enrollmentSvc enrollmentdomain.Service
	userSvc       userdomain.Service
	courseSvc     coursedomain.Service
	pdfProvider   pdf.Provider
	writeLimiter  *ratelimit.WriteLimiter
	cfgHolder     *config.PlatformConfigHolder
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	Log *zap.Logger

	EnrollmentSvc enrollmentdomain.Service
	UserSvc       userdomain.Service
	CourseSvc     coursedomain.Service
	PDFProvider   pdf.Provider
	WriteLimiter  *ratelimit.WriteLimiter `optional:"true"`
	CfgHolder     *config.PlatformConfigHolder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		log:    p.Log.Named("http.server"),

		enrollmentSvc: p.EnrollmentSvc,
		userSvc:       p.UserSvc,
		courseSvc:     p.CourseSvc,
		pdfProvider:   p.PDFProvider,
		writeLimiter:  p.WriteLimiter,
		cfgHolder:     p.CfgHolder,
	}

	svc.registerAPIRoutes()
	svc.registerCertificateRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	writes := v1.Group("")
	writes.Use(s.RateLimitWrites())

	writes.POST("/enrollments", s.CreateEnrollment)
	writes.POST("/enrollments/:id/payment", s.ConfirmPayment)
	writes.POST("/enrollments/:id/lessons", s.CompleteLesson)
	writes.POST("/enrollments/:id/complete", s.CompleteCourse)
	writes.POST("/enrollments/:id/rating", s.RateCourse)
	writes.POST("/enrollments/:id/access", s.UpdateLastAccess)
	writes.POST("/enrollments/:id/suspend", s.SuspendEnrollment)
	writes.POST("/enrollments/:id/reactivate", s.ReactivateEnrollment)
	writes.DELETE("/enrollments/:id", s.CancelEnrollment)

	v1.GET("/enrollments/:id", s.GetEnrollment)
	v1.GET("/enrollment-check", s.CheckEnrollment)
	v1.GET("/users/:id", s.GetUser)
	v1.GET("/students/:studentId/enrollments", s.ListEnrollmentsByStudent)
	v1.GET("/courses/:courseId", s.GetCourse)
	v1.GET("/courses/:courseId/enrollments", s.ListEnrollmentsByCourse)
	v1.GET("/courses/:courseId/enrollments/stats", s.GetCourseEnrollmentStats)

	reports := v1.Group("/reports/enrollments")
	reports.GET("/stats", s.GetEnrollmentStats)
	reports.GET("/inactive", s.ListInactiveEnrollments)
	reports.GET("/low-progress", s.ListLowProgressEnrollments)
	reports.GET("/recent", s.ListRecentEnrollments)
}

func (s *Server) registerCertificateRoutes() {
	s.engine.GET("/certificates/:certificateId", s.DownloadCertificate)
}
