package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/repository"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// DashboardService 统计业务接口
type DashboardService interface {
	Monthly(ctx context.Context, userID string, req *dto.MonthlyStatsRequest) (*dto.MonthlyStatsResponse, error)
	Weekly(ctx context.Context, userID string) (*dto.WeeklyStatsResponse, error)
	Yearly(ctx context.Context, userID string, req *dto.YearlyStatsRequest) (*dto.YearlyStatsResponse, error)
	GoalProgress(ctx context.Context, userID string) (*dto.GoalProgressResponse, error)
}

type dashboardService struct {
	repo                 *repository.Repository
	clock                *timeutil.Clock
	monthlyTargetMinutes int
	logger               *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, clock *timeutil.Clock, monthlyTargetMinutes int, logger *zap.Logger) DashboardService {
	return &dashboardService{
		repo:                 repo,
		clock:                clock,
		monthlyTargetMinutes: monthlyTargetMinutes,
		logger:               logger,
	}
}

// ────────────────────── Monthly ──────────────────────

func (s *dashboardService) Monthly(ctx context.Context, userID string, req *dto.MonthlyStatsRequest) (*dto.MonthlyStatsResponse, error) {
	now := s.clock.Now()
	year, month := req.Year, time.Month(req.Month)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}

	start, end := s.clock.MonthRange(year, month)
	sessions, err := s.repo.StudySession.ListByUserInRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("查询月度学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.MonthlyStatsResponse{
		Year:         year,
		Month:        int(month),
		PeriodStart:  s.clock.FormatDateForInput(start),
		PeriodEnd:    s.clock.FormatDateForInput(end),
		SessionStats: AggregateSessions(sessions, s.clock),
	}, nil
}

// ────────────────────── Weekly ──────────────────────

func (s *dashboardService) Weekly(ctx context.Context, userID string) (*dto.WeeklyStatsResponse, error) {
	start, end := s.clock.WeekRange(s.clock.Now())
	sessions, err := s.repo.StudySession.ListByUserInRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("查询本周学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.WeeklyStatsResponse{
		WeekStart:    s.clock.FormatDateForInput(start),
		WeekEnd:      s.clock.FormatDateForInput(end),
		SessionStats: AggregateSessions(sessions, s.clock),
	}, nil
}

// ────────────────────── Yearly ──────────────────────

func (s *dashboardService) Yearly(ctx context.Context, userID string, req *dto.YearlyStatsRequest) (*dto.YearlyStatsResponse, error) {
	year := req.Year
	if year == 0 {
		year = s.clock.Now().Year()
	}

	start, end := s.clock.YearRange(year)
	sessions, err := s.repo.StudySession.ListByUserInRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("查询年度学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return &dto.YearlyStatsResponse{
		Year:             year,
		MonthlyBreakdown: MonthlyBreakdown(sessions, year, s.clock),
		SessionStats:     AggregateSessions(sessions, s.clock),
	}, nil
}

// ────────────────────── GoalProgress ──────────────────────

func (s *dashboardService) GoalProgress(ctx context.Context, userID string) (*dto.GoalProgressResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	sessions, err := s.repo.StudySession.ListAllByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp, err := ComputeGoalProgress(user, sessions, s.clock, s.monthlyTargetMinutes)
	if err != nil {
		if errors.Is(err, ErrExamNotFound) {
			s.logger.Warn("考试目标引用了未知考试", zap.String("user_id", userID))
		}
		return nil, err
	}
	return resp, nil
}
