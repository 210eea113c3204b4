package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 公共字段。删除都是软删除，测验历史和主题目录不做物理清除。
// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
