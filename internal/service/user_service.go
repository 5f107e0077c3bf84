package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/internal/repository"
	pkgerrors "github.com/taisuke86/akiramehende/pkg/errors"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

const maxNicknameLength = 50

// UserService 用户（本人）业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	UpdateNickname(ctx context.Context, userID, nickname string) (*dto.UserResponse, error)
	ClearNickname(ctx context.Context, userID string) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type userService struct {
	repo   *repository.Repository
	policy *AdminPolicy
	clock  *timeutil.Clock
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, policy *AdminPolicy, clock *timeutil.Clock, logger *zap.Logger) UserService {
	return &userService{repo: repo, policy: policy, clock: clock, logger: logger}
}

// ────────────────────── GetProfile ──────────────────────

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.StudySession.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	total, err := s.repo.StudySession.SumDurationByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计学习时长失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.ProfileResponse{
		UserResponse: toUserResponse(user, s.policy),
		ExamSettings: toExamSettingsResponse(user, s.clock),
		SessionCount: count,
		TotalMinutes: total,
	}, nil
}

// ────────────────────── UpdateNickname ──────────────────────

func (s *userService) UpdateNickname(ctx context.Context, userID, nickname string) (*dto.UserResponse, error) {
	trimmed, err := validateNickname(nickname)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User.UpdateNickname(ctx, userID, &trimmed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("更新昵称失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, userID)
}

// ────────────────────── ClearNickname ──────────────────────

func (s *userService) ClearNickname(ctx context.Context, userID string) (*dto.UserResponse, error) {
	if err := s.repo.User.UpdateNickname(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("清除昵称失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, userID)
}

// ────────────────────── DeleteAccount ──────────────────────

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.User.DeleteAccount(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("注销账号失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Info("账号已注销", zap.String("user_id", userID))
	return nil
}

// ── 内部辅助方法 ──

func (s *userService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *userService) reload(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, s.policy)
	return &resp, nil
}

// validateNickname 去除首尾空白后长度须为 1–50 字符
func validateNickname(nickname string) (string, error) {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return "", pkgerrors.Invalid("nickname", "昵称不能为空")
	}
	if utf8.RuneCountInString(trimmed) > maxNicknameLength {
		return "", pkgerrors.Invalid("nickname", "昵称不能超过 50 个字符")
	}
	return trimmed, nil
}

// normalizeOptionalNickname 注册时的可选昵称；空白视为未填写
func normalizeOptionalNickname(nickname *string) (*string, error) {
	if nickname == nil || strings.TrimSpace(*nickname) == "" {
		return nil, nil
	}
	trimmed, err := validateNickname(*nickname)
	if err != nil {
		return nil, err
	}
	return &trimmed, nil
}

func toUserResponse(user *model.User, policy *AdminPolicy) dto.UserResponse {
	_, hasGoal := user.ExamGoal()
	return dto.UserResponse{
		ID:              user.UserID,
		Email:           user.Email,
		Nickname:        user.Nickname,
		DisplayName:     user.DisplayName(),
		HasExamSettings: hasGoal,
		IsAdmin:         policy.IsAdmin(user.Email, user.EmailVerified()),
		CreatedAt:       user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
