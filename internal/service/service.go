package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taisuke86/akiramehende/config"
	"github.com/taisuke86/akiramehende/internal/repository"
	"github.com/taisuke86/akiramehende/pkg/jwt"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// TokenBlacklist 已注销 Token 的存储（Redis 实现见 pkg/redis）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	StudySession StudySessionService
	Dashboard    DashboardService
	Exam         ExamService
	Admin        AdminService
	Export       ExportService

	// AdminPolicy 管理员白名单，同时供路由层 AdminOnly 中间件使用
	AdminPolicy *AdminPolicy
}

// NewService 创建 Service 聚合
// blacklist 为 nil 时注销仅依赖 Token 自然过期
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	clock *timeutil.Clock,
	logger *zap.Logger,
) *Service {
	policy := NewAdminPolicy(cfg.Admin.Emails)
	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, blacklist, policy, logger),
		User:         NewUserService(repo, policy, clock, logger),
		StudySession: NewStudySessionService(repo, clock, logger),
		Dashboard:    NewDashboardService(repo, clock, cfg.Study.MonthlyTargetMinutes, logger),
		Exam:         NewExamService(repo, clock, logger),
		Admin:        NewAdminService(repo, policy, clock, logger),
		Export:       NewExportService(repo, clock, logger),
		AdminPolicy:  policy,
	}
}
