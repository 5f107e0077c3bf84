package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/config"
	"github.com/taisuke86/akiramehende/internal/api/handler"
	"github.com/taisuke86/akiramehende/internal/api/middleware"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/jwt"
	"github.com/taisuke86/akiramehende/pkg/redis"
)

// 登录/注册/刷新接口限流：每 IP 每分钟 10 次
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流与 Token 黑名单降级关闭
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	admins *service.AdminPolicy,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	db *gorm.DB,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// *redis.Client 为 nil 时不能直接赋给接口，否则接口非 nil
	var (
		revocations middleware.RevocationChecker
		limiter     middleware.RateLimiter
	)
	if rdb != nil {
		revocations, limiter = rdb, rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(limiter, authRateLimit, authRateWindow))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, revocations))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 用户模块（本人）
			users := authorized.Group("/users/me")
			{
				users.GET("", h.User.GetProfile)
				users.DELETE("", h.User.DeleteAccount)
				users.PUT("/nickname", h.User.UpdateNickname)
				users.DELETE("/nickname", h.User.ClearNickname)
			}

			// 学习记录模块
			sessions := authorized.Group("/study-sessions")
			{
				sessions.POST("", h.StudySession.Create)
				sessions.GET("", h.StudySession.List)
				sessions.GET("/export", h.Export.ExportStudySessions)
				sessions.GET("/:id", h.StudySession.Get)
				sessions.PUT("/:id", h.StudySession.Update)
				sessions.DELETE("/:id", h.StudySession.Delete)
			}

			// 统计模块
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/monthly", h.Dashboard.Monthly)
				dashboard.GET("/weekly", h.Dashboard.Weekly)
				dashboard.GET("/yearly", h.Dashboard.Yearly)
				dashboard.GET("/goal-progress", h.Dashboard.GoalProgress)
			}

			// 考试目录
			authorized.GET("/exams", h.Exam.ListExams)
			authorized.GET("/exams/:code", h.Exam.GetExam)

			// 考试目标模块
			examSettings := authorized.Group("/exam-settings")
			{
				examSettings.GET("", h.Exam.GetSettings)
				examSettings.PUT("", h.Exam.UpdateSettings)
				examSettings.DELETE("", h.Exam.ClearSettings)
				examSettings.GET("/study-plan", h.Exam.GetStudyPlan)
			}

			// 管理端（邮箱白名单）
			admin := authorized.Group("/admin")
			admin.Use(middleware.AdminOnly(admins))
			{
				admin.GET("/users", h.Admin.ListUsers)
				admin.GET("/users/:id", h.Admin.GetUser)
				admin.DELETE("/users/:id", h.Admin.DeleteUser)
				admin.GET("/stats", h.Admin.Stats)
			}
		}
	}

	return r
}

// healthCheck 检查数据库连通性
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
