package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('student','admin');default:'student'" json:"role"`

	// 职业背景
	JobRole         string `gorm:"size:100" json:"jobRole"`
	ExperienceLevel string `gorm:"size:20" json:"experienceLevel"` // fresher, 1-3, 3-5, 5+

	// 每日测验偏好
	NotificationEnabled bool   `gorm:"default:true" json:"notificationEnabled"`
	NotificationTime    string `gorm:"size:5;default:'09:00'" json:"notificationTime"` // HH:MM
	Timezone            string `gorm:"size:64;default:'UTC'" json:"timezone"`
	QuizGoal            int    `gorm:"default:1" json:"quizGoal"` // 每日完成目标
	TimerEnabled        bool   `gorm:"default:true" json:"timerEnabled"`
	QuizDifficulty      string `gorm:"size:10;default:'medium'" json:"quizDifficulty"`

	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// Location 解析用户时区，失败时退回 UTC
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
