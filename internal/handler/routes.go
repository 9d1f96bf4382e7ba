package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/middleware"
	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/internal/service"
)

// Routes bundles what Register needs to mount the portal.
type Routes struct {
	Auth         *AuthHandler
	Students     *StudentHandler
	Metrics      *MetricsHandler
	AuthService  *service.AuthService
	Gate         *service.SessionGate
	Audit        *service.AuditService
	AutoRedirect bool
	Logger       *zap.Logger
}

// Register mounts the portal's pages. Callers install the HTML renderer and
// the Browser middleware beforehand.
func Register(r *gin.Engine, routes Routes) {
	if routes.Metrics != nil {
		r.GET("/health", routes.Metrics.Health)
		r.GET("/ready", routes.Metrics.Ready)
		r.GET("/metrics", routes.Metrics.Prometheus)
	}

	r.GET("/login", routes.Auth.LoginPage)
	r.GET("/login/:provider", routes.Auth.Login)
	r.GET("/oauth2/redirect", middleware.Audit(routes.Audit, models.AuditActionLogin, "session"), routes.Auth.Callback)
	r.GET("/unauthorized", routes.Auth.Unauthorized)
	r.POST("/logout", middleware.Audit(routes.Audit, models.AuditActionLogout, "session"), routes.Auth.Logout)

	protected := r.Group("/")
	protected.Use(middleware.SessionGate(routes.Gate, routes.AuthService, routes.AutoRedirect, routes.Logger))
	protected.GET("/", routes.Students.Home)
	protected.GET("/students/export", routes.Students.Export)
	protected.GET("/students/:id/edit", routes.Students.Edit)
	protected.POST("/students/:id", middleware.Audit(routes.Audit, models.AuditActionStudentUpdate, "student"), routes.Students.Update)
	protected.GET("/domains/:program", routes.Students.Domain)

	r.NoRoute(routes.Students.Home)
}
