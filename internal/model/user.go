package model

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表 — 对应 users
//
// 考试目标的四个列只通过 ExamGoal() 读取、只通过 UserRepository.SetExamGoal /
// ClearExamGoal 整体写入，不单独修改其中某一列。
type User struct {
	UserID            string     `gorm:"type:uuid;primaryKey"              json:"user_id"`
	Email             string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash      string     `gorm:"type:varchar(255);not null"        json:"-"`
	Nickname          *string    `gorm:"type:varchar(50)"                  json:"nickname,omitempty"`
	TargetExam        *string    `gorm:"type:varchar(10)"                  json:"-"`
	ExamDate          *time.Time `gorm:""                                  json:"-"`
	WeekdayStudyHours *float64   `gorm:"type:numeric(4,2)"                 json:"-"`
	WeekendStudyHours *float64   `gorm:"type:numeric(4,2)"                 json:"-"`
	EmailVerifiedAt   *time.Time `gorm:""                                  json:"-"`
	BaseModel

	// 关联
	StudySessions []StudySession `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 补全主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	newID(&u.UserID)
	return nil
}

// ExamGoal 考试目标（四项要么全部设置，要么视为未设置）
type ExamGoal struct {
	ExamCode          string
	ExamDate          time.Time
	WeekdayStudyHours float64
	WeekendStudyHours float64
}

// ExamGoal 返回完整的考试目标；任一列为空时视为未设置
func (u *User) ExamGoal() (*ExamGoal, bool) {
	if u == nil || u.TargetExam == nil || u.ExamDate == nil ||
		u.WeekdayStudyHours == nil || u.WeekendStudyHours == nil {
		return nil, false
	}
	return &ExamGoal{
		ExamCode:          *u.TargetExam,
		ExamDate:          *u.ExamDate,
		WeekdayStudyHours: *u.WeekdayStudyHours,
		WeekendStudyHours: *u.WeekendStudyHours,
	}, true
}

// EmailVerified 邮箱是否已验证
// 开放注册不会写入该列，只有 cmd/bootstrap-admin 创建的账号带验证时间
func (u *User) EmailVerified() bool {
	return u != nil && u.EmailVerifiedAt != nil
}

// DisplayName 昵称优先，否则使用邮箱
func (u *User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	return u.Email
}
