package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/repository"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// ── 管理模块业务错误 ──

var (
	ErrAdminSelfDelete = errors.New("不能删除自己的账号")
)

// AdminService 管理端业务接口（调用方已通过白名单校验）
type AdminService interface {
	ListUsers(ctx context.Context, req *dto.AdminUserListRequest) ([]dto.AdminUserResponse, int64, error)
	GetUser(ctx context.Context, id string) (*dto.AdminUserDetailResponse, error)
	DeleteUser(ctx context.Context, callerID, id string) error
	Stats(ctx context.Context) (*dto.AdminStatsResponse, error)
}

type adminService struct {
	repo   *repository.Repository
	policy *AdminPolicy
	clock  *timeutil.Clock
	logger *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(repo *repository.Repository, policy *AdminPolicy, clock *timeutil.Clock, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, policy: policy, clock: clock, logger: logger}
}

// ────────────────────── ListUsers ──────────────────────

func (s *adminService) ListUsers(ctx context.Context, req *dto.AdminUserListRequest) ([]dto.AdminUserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		result = append(result, dto.AdminUserResponse{
			UserResponse: toUserResponse(&users[i].User, s.policy),
			SessionCount: users[i].SessionCount,
		})
	}
	return result, total, nil
}

// ────────────────────── GetUser ──────────────────────

func (s *adminService) GetUser(ctx context.Context, id string) (*dto.AdminUserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	sessions, err := s.repo.StudySession.ListAllByUser(ctx, id)
	if err != nil {
		s.logger.Error("查询学习记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	list := make([]dto.StudySessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, toStudySessionResponse(&sessions[i], s.clock))
	}

	return &dto.AdminUserDetailResponse{
		UserResponse:  toUserResponse(user, s.policy),
		ExamSettings:  toExamSettingsResponse(user, s.clock),
		TotalMinutes:  SumMinutes(sessions),
		StudySessions: list,
	}, nil
}

// ────────────────────── DeleteUser ──────────────────────

func (s *adminService) DeleteUser(ctx context.Context, callerID, id string) error {
	if callerID == id {
		return ErrAdminSelfDelete
	}

	if err := s.repo.User.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("管理员删除用户",
		zap.String("admin_id", callerID),
		zap.String("user_id", id),
	)
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *adminService) Stats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	users, err := s.repo.User.Count(ctx)
	if err != nil {
		s.logger.Error("统计用户数失败", zap.Error(err))
		return nil, err
	}
	sessions, err := s.repo.StudySession.CountAll(ctx)
	if err != nil {
		s.logger.Error("统计学习记录数失败", zap.Error(err))
		return nil, err
	}
	duration, err := s.repo.StudySession.SumDurationAll(ctx)
	if err != nil {
		s.logger.Error("统计学习时长失败", zap.Error(err))
		return nil, err
	}

	return &dto.AdminStatsResponse{
		UserCount:     users,
		SessionCount:  sessions,
		TotalDuration: duration,
	}, nil
}
