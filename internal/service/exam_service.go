package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/dto"
	"github.com/taisuke86/akiramehende/internal/model"
	"github.com/taisuke86/akiramehende/internal/repository"
	pkgerrors "github.com/taisuke86/akiramehende/pkg/errors"
	"github.com/taisuke86/akiramehende/pkg/timeutil"
)

// ── 考试模块业务错误 ──

var (
	ErrExamSettingsNotFound = errors.New("尚未设置考试目标")
)

const maxStudyHoursPerDay = 24

// ExamService 考试目录与考试目标业务接口
type ExamService interface {
	List(level string) []dto.ExamResponse
	Get(code string) (*dto.ExamResponse, error)
	GetSettings(ctx context.Context, userID string) (*dto.ExamSettingsResponse, error)
	UpdateSettings(ctx context.Context, userID string, req *dto.UpdateExamSettingsRequest) (*dto.ExamSettingsResponse, error)
	ClearSettings(ctx context.Context, userID string) (*dto.ExamSettingsResponse, error)
	GetStudyPlan(ctx context.Context, userID string) (*dto.StudyPlanResponse, error)
}

type examService struct {
	repo   *repository.Repository
	clock  *timeutil.Clock
	logger *zap.Logger
}

// NewExamService 创建 ExamService 实例
func NewExamService(repo *repository.Repository, clock *timeutil.Clock, logger *zap.Logger) ExamService {
	return &examService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── 考试目录 ──────────────────────

func (s *examService) List(level string) []dto.ExamResponse {
	exams := AllExams()
	if level != "" {
		exams = ExamsByLevel(ExamLevel(level))
	}

	result := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		result = append(result, toExamResponse(exam))
	}
	return result
}

func (s *examService) Get(code string) (*dto.ExamResponse, error) {
	exam, ok := GetExamByCode(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return nil, ErrExamNotFound
	}
	resp := toExamResponse(exam)
	return &resp, nil
}

// ────────────────────── 考试目标 ──────────────────────

func (s *examService) GetSettings(ctx context.Context, userID string) (*dto.ExamSettingsResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toExamSettingsResponse(user, s.clock)
	return &resp, nil
}

func (s *examService) UpdateSettings(ctx context.Context, userID string, req *dto.UpdateExamSettingsRequest) (*dto.ExamSettingsResponse, error) {
	goal, err := s.validateSettings(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User.SetExamGoal(ctx, userID, *goal); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("保存考试目标失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("考试目标已更新",
		zap.String("user_id", userID),
		zap.String("exam", goal.ExamCode),
	)
	return s.GetSettings(ctx, userID)
}

func (s *examService) ClearSettings(ctx context.Context, userID string) (*dto.ExamSettingsResponse, error) {
	if err := s.repo.User.ClearExamGoal(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("清除考试目标失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return s.GetSettings(ctx, userID)
}

// ────────────────────── GetStudyPlan ──────────────────────

func (s *examService) GetStudyPlan(ctx context.Context, userID string) (*dto.StudyPlanResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	goal, ok := user.ExamGoal()
	if !ok {
		return nil, ErrExamSettingsNotFound
	}

	completed, err := s.repo.StudySession.SumDurationByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计学习时长失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	plan, err := ComputeStudyPlan(*goal, completed, s.clock)
	if err != nil {
		s.logger.Warn("考试目标引用了未知考试",
			zap.String("user_id", userID),
			zap.String("exam", goal.ExamCode),
		)
		return nil, err
	}
	return plan, nil
}

// ── 内部辅助方法 ──

func (s *examService) getUser(ctx context.Context, userID string) (*model.User, error) {
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

// validateSettings 逐字段校验；考试日期须晚于当前时刻
func (s *examService) validateSettings(req *dto.UpdateExamSettingsRequest) (*model.ExamGoal, error) {
	code := strings.ToUpper(strings.TrimSpace(req.TargetExam))
	if code == "" {
		return nil, pkgerrors.Invalid("target_exam", "请选择目标考试")
	}
	if _, ok := GetExamByCode(code); !ok {
		return nil, pkgerrors.Invalid("target_exam", "无效的考试代码")
	}

	if strings.TrimSpace(req.ExamDate) == "" {
		return nil, pkgerrors.Invalid("exam_date", "请填写考试日期")
	}
	examDate, err := s.clock.ParseDate(strings.TrimSpace(req.ExamDate))
	if err != nil {
		return nil, pkgerrors.Invalid("exam_date", "日期格式应为 YYYY-MM-DD")
	}
	if !examDate.After(s.clock.Now()) {
		return nil, pkgerrors.Invalid("exam_date", "考试日期必须是将来的日期")
	}

	if err := validateHours("weekday_study_hours", req.WeekdayStudyHours); err != nil {
		return nil, err
	}
	if err := validateHours("weekend_study_hours", req.WeekendStudyHours); err != nil {
		return nil, err
	}

	return &model.ExamGoal{
		ExamCode:          code,
		ExamDate:          examDate,
		WeekdayStudyHours: *req.WeekdayStudyHours,
		WeekendStudyHours: *req.WeekendStudyHours,
	}, nil
}

func validateHours(field string, hours *float64) error {
	if hours == nil {
		return pkgerrors.Invalid(field, "请填写每日学习时长")
	}
	if *hours < 0 || *hours > maxStudyHoursPerDay {
		return pkgerrors.Invalid(field, "每日学习时长须在 0–24 小时之间")
	}
	return nil
}

// toExamSettingsResponse 只有四项齐全时才视为已设置
func toExamSettingsResponse(user *model.User, clock *timeutil.Clock) dto.ExamSettingsResponse {
	goal, ok := user.ExamGoal()
	if !ok {
		return dto.ExamSettingsResponse{HasExamSettings: false}
	}

	date := clock.FormatDateForInput(goal.ExamDate)
	resp := dto.ExamSettingsResponse{
		HasExamSettings:   true,
		TargetExam:        &goal.ExamCode,
		ExamDate:          &date,
		WeekdayStudyHours: &goal.WeekdayStudyHours,
		WeekendStudyHours: &goal.WeekendStudyHours,
	}
	if exam, found := GetExamByCode(goal.ExamCode); found {
		info := toExamResponse(exam)
		resp.Exam = &info
	}
	return resp
}
