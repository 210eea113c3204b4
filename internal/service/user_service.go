package service

import (
	"errors"
	"time"

	"quiz_prep_backend/internal/model"
	"quiz_prep_backend/internal/repository"
	"quiz_prep_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SettingsUpdate 可修改的偏好项，nil 表示保持不变
type SettingsUpdate struct {
	NotificationEnabled *bool   `json:"notificationEnabled"`
	NotificationTime    *string `json:"notificationTime"`
	Timezone            *string `json:"timezone"`
	QuizGoal            *int    `json:"quizGoal"`
	TimerEnabled        *bool   `json:"timerEnabled"`
	QuizDifficulty      *string `json:"quizDifficulty"`
	JobRole             *string `json:"jobRole"`
	ExperienceLevel     *string `json:"experienceLevel"`
}

func (s *UserService) UpdateSettings(userID uint, update SettingsUpdate) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if update.NotificationEnabled != nil {
		user.NotificationEnabled = *update.NotificationEnabled
	}
	if update.NotificationTime != nil {
		if _, err := time.Parse("15:04", *update.NotificationTime); err != nil {
			return nil, errors.New("notificationTime must be in HH:MM format")
		}
		user.NotificationTime = *update.NotificationTime
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil {
			return nil, errors.New("unknown timezone")
		}
		user.Timezone = *update.Timezone
	}
	if update.QuizGoal != nil && *update.QuizGoal > 0 {
		user.QuizGoal = *update.QuizGoal
	}
	if update.TimerEnabled != nil {
		user.TimerEnabled = *update.TimerEnabled
	}
	if update.QuizDifficulty != nil {
		user.QuizDifficulty = *update.QuizDifficulty
	}
	if update.JobRole != nil {
		user.JobRole = *update.JobRole
	}
	if update.ExperienceLevel != nil {
		user.ExperienceLevel = *update.ExperienceLevel
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
