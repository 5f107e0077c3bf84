package model

import (
	"time"

	"gorm.io/gorm"
)

// StudySession 学习记录表 — 对应 study_sessions
type StudySession struct {
	SessionID string    `gorm:"type:uuid;primaryKey"                       json:"session_id"`
	UserID    string    `gorm:"type:uuid;not null;index:idx_study_sessions_user_date,priority:1" json:"user_id"`
	Subject   string    `gorm:"type:varchar(100);not null"                 json:"subject"`
	Duration  int       `gorm:"not null"                                   json:"duration"` // 分钟
	Date      time.Time `gorm:"not null;index:idx_study_sessions_user_date,priority:2" json:"date"` // 业务时区当天 00:00
	Memo      *string   `gorm:"type:text"                                  json:"memo,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StudySession) TableName() string { return "study_sessions" }

// BeforeCreate 补全主键
func (s *StudySession) BeforeCreate(_ *gorm.DB) error {
	newID(&s.SessionID)
	return nil
}
