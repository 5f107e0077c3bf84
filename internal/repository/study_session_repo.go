package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/model"
)

// StudySessionFilter 学习记录列表过滤条件（零值表示不过滤）
type StudySessionFilter struct {
	From    *time.Time // 含
	To      *time.Time // 含
	Subject string
}

// StudySessionRepository 学习记录数据访问接口
// 除全站统计外，所有方法均按 user_id 限定归属
type StudySessionRepository interface {
	Create(ctx context.Context, session *model.StudySession) error
	GetByIDForUser(ctx context.Context, id, userID string) (*model.StudySession, error)
	ListByUser(ctx context.Context, userID string, filter StudySessionFilter, offset, limit int) ([]model.StudySession, int64, error)
	ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]model.StudySession, error)
	ListAllByUser(ctx context.Context, userID string) ([]model.StudySession, error)
	Update(ctx context.Context, session *model.StudySession) error
	DeleteForUser(ctx context.Context, id, userID string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	SumDurationByUser(ctx context.Context, userID string) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	SumDurationAll(ctx context.Context) (int64, error)
}

type studySessionRepo struct {
	db *gorm.DB
}

// NewStudySessionRepo 创建 StudySessionRepository 实例
func NewStudySessionRepo(db *gorm.DB) StudySessionRepository {
	return &studySessionRepo{db: db}
}

func (r *studySessionRepo) Create(ctx context.Context, session *model.StudySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *studySessionRepo) GetByIDForUser(ctx context.Context, id, userID string) (*model.StudySession, error) {
	var session model.StudySession
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", id, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *studySessionRepo) ListByUser(ctx context.Context, userID string, filter StudySessionFilter, offset, limit int) ([]model.StudySession, int64, error) {
	var sessions []model.StudySession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StudySession{}).Where("user_id = ?", userID)
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}
	if filter.Subject != "" {
		db = db.Where("subject = ?", filter.Subject)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *studySessionRepo) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]model.StudySession, error) {
	var sessions []model.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *studySessionRepo) ListAllByUser(ctx context.Context, userID string) ([]model.StudySession, error) {
	var sessions []model.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *studySessionRepo) Update(ctx context.Context, session *model.StudySession) error {
	result := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("session_id = ? AND user_id = ?", session.SessionID, session.UserID).
		Updates(map[string]interface{}{
			"subject":  session.Subject,
			"duration": session.Duration,
			"date":     session.Date,
			"memo":     session.Memo,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studySessionRepo) DeleteForUser(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", id, userID).
		Delete(&model.StudySession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studySessionRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

func (r *studySessionRepo) SumDurationByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Select("COALESCE(SUM(duration), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *studySessionRepo) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.StudySession{}).Count(&total).Error
	return total, err
}

func (r *studySessionRepo) SumDurationAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&total).Error
	return total, err
}
