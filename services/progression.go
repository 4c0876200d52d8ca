package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"aethex-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XPPerLevel is the flat amount of XP each level costs.
const XPPerLevel = 1000

// LoyaltyPerCheckIn is credited the first time a user checks in on a given UTC day.
const LoyaltyPerCheckIn = 10

// LevelForXP returns floor(xp/1000)+1. Negative XP counts as zero.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// Streak is the consecutive-day counter stored on a profile.
type Streak struct {
	Current int
	Longest int
	LastAt  *time.Time
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextStreak applies one day of activity at now:
//
//	no prior date        -> 1
//	same UTC day         -> unchanged
//	exactly one day gap  -> +1
//	longer gap or skew   -> 1
//
// Longest is raised to Current whenever Current exceeds it.
func NextStreak(s Streak, now time.Time) Streak {
	today := utcDate(now)
	next := Streak{Current: s.Current, Longest: s.Longest, LastAt: &today}

	if s.LastAt == nil {
		next.Current = 1
	} else {
		days := int(today.Sub(utcDate(*s.LastAt)).Hours() / 24)
		switch {
		case days == 0:
		case days == 1:
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next
}

type ProgressionService struct {
	DB           *gorm.DB
	Achievements *AchievementService // optional; evaluates triggers after progress changes
	Now          func() time.Time
}

func NewProgressionService(db *gorm.DB, achievements *AchievementService) *ProgressionService {
	return &ProgressionService{DB: db, Achievements: achievements, Now: time.Now}
}

// CheckInResult is returned by RecordActivity.
type CheckInResult struct {
	Profile      *models.UserProfile `json:"profile"`
	StreakBumped bool                `json:"streak_bumped"`
	Unlocked     []string            `json:"unlocked,omitempty"`
}

// RecordActivity advances the profile's daily streak. Repeated calls on the
// same UTC day are no-ops. Writes are last-write-wins.
func (s *ProgressionService) RecordActivity(ctx context.Context, userID string) (*CheckInResult, error) {
	var prof models.UserProfile
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error; err != nil {
		return nil, dbError("user_profiles", err)
	}

	now := s.Now()
	before := Streak{Current: prof.CurrentStreak, Longest: prof.LongestStreak, LastAt: prof.LastStreakAt}
	after := NextStreak(before, now)

	bumped := before.LastAt == nil || !utcDate(*before.LastAt).Equal(utcDate(now))
	if bumped {
		prof.CurrentStreak = after.Current
		prof.LongestStreak = after.Longest
		prof.LastStreakAt = after.LastAt
		prof.LoyaltyPoints += LoyaltyPerCheckIn

		err := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"current_streak": prof.CurrentStreak,
			"longest_streak": prof.LongestStreak,
			"last_streak_at": prof.LastStreakAt,
			"loyalty_points": gorm.Expr("loyalty_points + ?", LoyaltyPerCheckIn),
		}).Error
		if err != nil {
			log.Printf("❌ [STREAK] failed to persist streak for %s: %v", userID, err)
			return nil, dbError("user_profiles", err)
		}
		log.Printf("🔥 [STREAK] %s → current=%d longest=%d", userID, prof.CurrentStreak, prof.LongestStreak)
	}

	res := &CheckInResult{Profile: &prof, StreakBumped: bumped}
	if bumped && s.Achievements != nil {
		res.Unlocked = s.Achievements.AutoAward(ctx, userID)
		if len(res.Unlocked) > 0 {
			if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error; err != nil {
				return nil, dbError("user_profiles", err)
			}
		}
	}
	return res, nil
}

// GrantXP credits xp outside of any achievement (admin grants, events).
func (s *ProgressionService) GrantXP(ctx context.Context, userID string, xp int64, reason string) (*models.UserProfile, error) {
	if xp <= 0 {
		return nil, invalid("xp", "min")
	}
	var prof models.UserProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProfile(tx, userID, &prof); err != nil {
			return err
		}
		_, err := applyXP(tx, &prof, xp, reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.Achievements != nil {
		if unlocked := s.Achievements.AutoAward(ctx, userID); len(unlocked) > 0 {
			if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error; err != nil {
				return nil, dbError("user_profiles", err)
			}
		}
	}
	return &prof, nil
}

// lockProfile loads the profile FOR UPDATE so concurrent XP credits on the
// same user serialize. sqlite has no row locks and skips the clause.
func lockProfile(tx *gorm.DB, userID string, prof *models.UserProfile) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(prof).Error; err != nil {
		return dbError("user_profiles", err)
	}
	return nil
}

// applyXP adds xp to prof inside tx, recomputes the level, persists both
// counters and emits a level-up notification when the level rose.
func applyXP(tx *gorm.DB, prof *models.UserProfile, xp int64, reason string) (leveledUp bool, err error) {
	oldLevel := prof.Level
	prof.TotalXP += xp
	if prof.TotalXP < 0 {
		prof.TotalXP = 0
	}
	prof.Level = LevelForXP(prof.TotalXP)

	if err := tx.Model(&models.UserProfile{}).Where("id = ?", prof.ID).Updates(map[string]interface{}{
		"total_xp": prof.TotalXP,
		"level":    prof.Level,
	}).Error; err != nil {
		return false, dbError("user_profiles", err)
	}

	log.Printf("🎮 [XP] %s +%d → XP=%d, Lvl=%d (reason: %s)", prof.ID, xp, prof.TotalXP, prof.Level, reason)

	if prof.Level <= oldLevel {
		return false, nil
	}
	n := models.Notification{
		UserID:  prof.ID,
		Type:    models.NotificationLevelUp,
		Title:   fmt.Sprintf("Level %d reached!", prof.Level),
		Message: fmt.Sprintf("You climbed from level %d to level %d.", oldLevel, prof.Level),
	}
	if err := tx.Create(&n).Error; err != nil {
		return true, dbError("notifications", err)
	}
	return true, nil
}
