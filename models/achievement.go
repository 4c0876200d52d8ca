package models

import (
	"time"

	"gorm.io/gorm"
)

// Achievement is a catalog entry; unlocking it credits XPReward once per user.
type Achievement struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string    `gorm:"uniqueIndex;size:64;not null" json:"code"` // e.g. "first-project"
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"` // emoji
	Category    string    `gorm:"size:32;default:'general'" json:"category"`
	XPReward    int64     `gorm:"not null;default:0" json:"xp_reward"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

// UserAchievement records an unlock. The composite unique index makes
// awarding idempotent.
type UserAchievement struct {
	ID            string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string      `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID string      `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:2;index" json:"achievement_id"`
	UnlockedAt    time.Time   `gorm:"autoCreateTime" json:"unlocked_at"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	newID(&ua.ID)
	return nil
}

// AchievementTrigger pairs a catalog entry with the profile condition that unlocks it.
// Triggers without a condition are only awarded explicitly.
type AchievementTrigger struct {
	Achievement
	Threshold map[string]int64
}

// Core catalog, seeded on startup and by the activate endpoint.
var CoreAchievements = []AchievementTrigger{
	{
		Achievement: Achievement{Code: "welcome", Name: "Welcome to AeThex", Description: "Created your profile", Icon: "👋", Category: "onboarding", XPReward: 100},
		Threshold:   map[string]int64{"event": 1},
	},
	{
		Achievement: Achievement{Code: "first-project", Name: "Builder", Description: "Created your first project", Icon: "🛠️", Category: "projects", XPReward: 250},
		Threshold:   map[string]int64{"projects": 1},
	},
	{
		Achievement: Achievement{Code: "streak-7", Name: "On a Roll", Description: "Checked in 7 days in a row", Icon: "🔥", Category: "streaks", XPReward: 300},
		Threshold:   map[string]int64{"current_streak": 7},
	},
	{
		Achievement: Achievement{Code: "streak-30", Name: "Unstoppable", Description: "Checked in 30 days in a row", Icon: "☄️", Category: "streaks", XPReward: 1000},
		Threshold:   map[string]int64{"current_streak": 30},
	},
	{
		Achievement: Achievement{Code: "level-5", Name: "Rising Star", Description: "Reached level 5", Icon: "⭐", Category: "levels", XPReward: 500},
		Threshold:   map[string]int64{"level": 5},
	},
	{
		Achievement: Achievement{Code: "level-10", Name: "Veteran", Description: "Reached level 10", Icon: "🏆", Category: "levels", XPReward: 1000},
		Threshold:   map[string]int64{"level": 10},
	},
	{
		Achievement: Achievement{Code: "contributor", Name: "Contributor", Description: "Accepted into the contributor program", Icon: "🤝", Category: "community", XPReward: 500},
	},
}
