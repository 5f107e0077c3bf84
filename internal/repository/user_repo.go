package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/taisuke86/akiramehende/internal/model"
)

// UserWithSessionCount 管理端用户列表项
type UserWithSessionCount struct {
	model.User
	SessionCount int64
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateNickname(ctx context.Context, id string, nickname *string) error
	// SetExamGoal / ClearExamGoal 以单条 UPDATE 同时写入四个考试目标列
	SetExamGoal(ctx context.Context, id string, goal model.ExamGoal) error
	ClearExamGoal(ctx context.Context, id string) error
	List(ctx context.Context, keyword string, offset, limit int) ([]UserWithSessionCount, int64, error)
	Count(ctx context.Context) (int64, error)
	// DeleteAccount 在同一事务内删除用户的学习记录与用户本身
	DeleteAccount(ctx context.Context, id string) error
}

// likeEscaper 关键字按字面匹配，% 与 _ 不作为通配符
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateNickname(ctx context.Context, id string, nickname *string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"nickname": nickname,
	})
}

func (r *userRepo) SetExamGoal(ctx context.Context, id string, goal model.ExamGoal) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"target_exam":         goal.ExamCode,
		"exam_date":           goal.ExamDate,
		"weekday_study_hours": goal.WeekdayStudyHours,
		"weekend_study_hours": goal.WeekendStudyHours,
	})
}

func (r *userRepo) ClearExamGoal(ctx context.Context, id string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"target_exam":         nil,
		"exam_date":           nil,
		"weekday_study_hours": nil,
		"weekend_study_hours": nil,
	})
}

func (r *userRepo) List(ctx context.Context, keyword string, offset, limit int) ([]UserWithSessionCount, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
		db = db.Where(`LOWER(email) LIKE ? ESCAPE '\' OR LOWER(COALESCE(nickname, '')) LIKE ? ESCAPE '\'`, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	result := make([]UserWithSessionCount, 0, len(users))
	if len(users) == 0 {
		return result, total, nil
	}

	ids := make([]string, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].UserID)
	}

	var counts []struct {
		UserID string
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.StudySession{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&counts).Error; err != nil {
		return nil, 0, err
	}

	countMap := make(map[string]int64, len(counts))
	for _, c := range counts {
		countMap[c.UserID] = c.Total
	}
	for i := range users {
		result = append(result, UserWithSessionCount{
			User:         users[i],
			SessionCount: countMap[users[i].UserID],
		})
	}

	return result, total, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error
	return total, err
}

func (r *userRepo) DeleteAccount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).
			Delete(&model.StudySession{}).Error; err != nil {
			return err
		}

		result := tx.Where("user_id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// updateColumns 按主键更新指定列；目标不存在时返回 gorm.ErrRecordNotFound
func (r *userRepo) updateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
