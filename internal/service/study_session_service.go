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

// ── 学习记录模块业务错误 ──

var (
	ErrStudySessionNotFound = errors.New("学习记录不存在")
)

// 字段限制
const (
	maxSubjectLength = 100
	maxMemoLength    = 1000
	minDuration      = 1
	maxDuration      = 24 * 60
)

// StudySessionService 学习记录业务接口（所有操作限定为本人记录）
type StudySessionService interface {
	Create(ctx context.Context, userID string, req *dto.CreateStudySessionRequest) (*dto.StudySessionResponse, error)
	GetByID(ctx context.Context, userID, id string) (*dto.StudySessionResponse, error)
	List(ctx context.Context, userID string, req *dto.StudySessionListRequest) ([]dto.StudySessionResponse, int64, error)
	Update(ctx context.Context, userID, id string, req *dto.UpdateStudySessionRequest) (*dto.StudySessionResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type studySessionService struct {
	repo   *repository.Repository
	clock  *timeutil.Clock
	logger *zap.Logger
}

// NewStudySessionService 创建 StudySessionService 实例
func NewStudySessionService(repo *repository.Repository, clock *timeutil.Clock, logger *zap.Logger) StudySessionService {
	return &studySessionService{repo: repo, clock: clock, logger: logger}
}

// sessionInput 校验后的学习记录字段
// 请求未带日期时 Date 为零值，由调用方决定取当天还是保留原值
type sessionInput struct {
	Subject  string
	Duration int
	Date     time.Time
	Memo     *string
}

// ────────────────────── Create ──────────────────────

func (s *studySessionService) Create(ctx context.Context, userID string, req *dto.CreateStudySessionRequest) (*dto.StudySessionResponse, error) {
	in, err := s.validate(req.Subject, req.Duration, req.Date, req.Memo)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.clock.StartOfDay(s.clock.Now())
	}

	session := &model.StudySession{
		UserID:   userID,
		Subject:  in.Subject,
		Duration: in.Duration,
		Date:     in.Date,
		Memo:     in.Memo,
	}
	if err := s.repo.StudySession.Create(ctx, session); err != nil {
		// 账号已被删除但 Access Token 尚未过期时，外键约束会拒绝写入
		if _, getErr := s.repo.User.GetByID(ctx, userID); errors.Is(getErr, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("创建学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := toStudySessionResponse(session, s.clock)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studySessionService) GetByID(ctx context.Context, userID, id string) (*dto.StudySessionResponse, error) {
	session, err := s.repo.StudySession.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudySessionNotFound
		}
		s.logger.Error("查询学习记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toStudySessionResponse(session, s.clock)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *studySessionService) List(ctx context.Context, userID string, req *dto.StudySessionListRequest) ([]dto.StudySessionResponse, int64, error) {
	filter := repository.StudySessionFilter{Subject: strings.TrimSpace(req.Subject)}

	if req.From != "" {
		from, err := s.clock.ParseDate(req.From)
		if err != nil {
			return nil, 0, pkgerrors.Invalid("from", "日期格式应为 YYYY-MM-DD")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := s.clock.ParseDate(req.To)
		if err != nil {
			return nil, 0, pkgerrors.Invalid("to", "日期格式应为 YYYY-MM-DD")
		}
		// 含当天
		end := to.AddDate(0, 0, 1).Add(-time.Second)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, pkgerrors.Invalid("from", "开始日期不能晚于结束日期")
	}

	sessions, total, err := s.repo.StudySession.ListByUser(ctx, userID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学习记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudySessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, toStudySessionResponse(&sessions[i], s.clock))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studySessionService) Update(ctx context.Context, userID, id string, req *dto.UpdateStudySessionRequest) (*dto.StudySessionResponse, error) {
	in, err := s.validate(req.Subject, req.Duration, req.Date, req.Memo)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.StudySession.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudySessionNotFound
		}
		s.logger.Error("查询学习记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	session.Subject = in.Subject
	session.Duration = in.Duration
	if !in.Date.IsZero() {
		session.Date = in.Date
	}
	session.Memo = in.Memo

	if err := s.repo.StudySession.Update(ctx, session); err != nil {
		// 读取后被并发删除
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudySessionNotFound
		}
		s.logger.Error("更新学习记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toStudySessionResponse(session, s.clock)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studySessionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.StudySession.DeleteForUser(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudySessionNotFound
		}
		s.logger.Error("删除学习记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// validate 逐字段校验；日期为空时 Date 留空
func (s *studySessionService) validate(subject string, duration int, date string, memo *string) (*sessionInput, error) {
	in := &sessionInput{Subject: strings.TrimSpace(subject), Duration: duration}

	if in.Subject == "" {
		return nil, pkgerrors.Invalid("subject", "科目不能为空")
	}
	if utf8.RuneCountInString(in.Subject) > maxSubjectLength {
		return nil, pkgerrors.Invalid("subject", "科目不能超过 100 个字符")
	}
	if duration < minDuration {
		return nil, pkgerrors.Invalid("duration", "学习时长至少为 1 分钟")
	}
	if duration > maxDuration {
		return nil, pkgerrors.Invalid("duration", "学习时长不能超过 1440 分钟")
	}

	if date = strings.TrimSpace(date); date != "" {
		d, err := s.clock.ParseDate(date)
		if err != nil {
			return nil, pkgerrors.Invalid("date", "日期格式应为 YYYY-MM-DD")
		}
		in.Date = d
	}

	if memo != nil {
		m := strings.TrimSpace(*memo)
		if utf8.RuneCountInString(m) > maxMemoLength {
			return nil, pkgerrors.Invalid("memo", "备注不能超过 1000 个字符")
		}
		if m != "" {
			in.Memo = &m
		}
	}

	return in, nil
}
