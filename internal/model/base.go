package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// newID 生成主键；PostgreSQL 侧另有 gen_random_uuid() 默认值，SQLite 依赖此处
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All 返回全部模型（SQLite AutoMigrate 与测试使用）
func All() []interface{} {
	return []interface{}{
		&User{},
		&StudySession{},
	}
}
