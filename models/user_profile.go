package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Arm is the product vertical a profile, project or opportunity is themed under.
type Arm string

const (
	ArmGameForge  Arm = "gameforge"
	ArmFoundation Arm = "foundation"
	ArmCorp       Arm = "corp"
	ArmLabs       Arm = "labs"
)

func (a Arm) Valid() bool {
	switch a {
	case "", ArmGameForge, ArmFoundation, ArmCorp, ArmLabs:
		return true
	}
	return false
}

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityBusy        Availability = "busy"
	AvailabilityUnavailable Availability = "unavailable"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable:
		return true
	}
	return false
}

// UserProfile is a user's identity plus gamification counters.
// ID is the auth provider's subject, so rows are never created with a random id.
type UserProfile struct {
	ID           string       `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string       `gorm:"uniqueIndex;size:32;not null" json:"username"`
	FullName     string       `gorm:"size:120" json:"full_name"`
	AvatarURL    string       `gorm:"type:text" json:"avatar_url,omitempty"`
	Bio          string       `gorm:"type:text" json:"bio,omitempty"`
	Arm          Arm          `gorm:"size:16" json:"arm,omitempty"`
	Availability Availability `gorm:"size:16;default:'available'" json:"availability"`

	// Gamification
	TotalXP       int64      `json:"total_xp" gorm:"default:0"`
	Level         int        `json:"level" gorm:"default:1"`
	LoyaltyPoints int64      `json:"loyalty_points" gorm:"default:0"`
	CurrentStreak int        `json:"current_streak" gorm:"default:0"`
	LongestStreak int        `json:"longest_streak" gorm:"default:0"`
	LastStreakAt  *time.Time `json:"last_streak_at,omitempty"` // UTC date, midnight

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// newID fills an empty string primary key. Used by the BeforeCreate hooks
// below so rows get ids on every driver, sqlite included.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
