package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"aethex-api/db"
	"aethex-api/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errAlreadyUnlocked = errors.New("achievement already unlocked")

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

type CreateAchievementRequest struct {
	Code        string `json:"code" validate:"omitempty,max=64"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=16"`
	Category    string `json:"category" validate:"max=32"`
	XPReward    int64  `json:"xp_reward" validate:"min=0,max=100000"`
}

// AwardResult describes the outcome of a single award call.
type AwardResult struct {
	Achievement     models.Achievement `json:"achievement"`
	AlreadyUnlocked bool               `json:"already_unlocked"`
	XPAwarded       int64              `json:"xp_awarded"`
	LeveledUp       bool               `json:"leveled_up"`
	TotalXP         int64              `json:"total_xp"`
	Level           int                `json:"level"`
}

func (s *AchievementService) Catalog(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	if err := s.DB.WithContext(ctx).Order("category ASC, xp_reward ASC").Find(&out).Error; err != nil {
		return nil, dbError("achievements", err)
	}
	return out, nil
}

func (s *AchievementService) Create(ctx context.Context, req CreateAchievementRequest) (*models.Achievement, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	code := req.Code
	if code == "" {
		code = req.Name
	}
	code = slug.Make(code)
	if code == "" {
		return nil, invalid("code", "slug")
	}
	category := req.Category
	if category == "" {
		category = "general"
	}
	a := models.Achievement{
		Code:        code,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Category:    category,
		XPReward:    req.XPReward,
	}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, dbError("achievements", err)
	}
	return &a, nil
}

// Activate seeds the core catalog. Re-running refreshes names and rewards.
func (s *AchievementService) Activate(ctx context.Context) (int, error) {
	n, err := db.SeedAchievements(s.DB.WithContext(ctx))
	if err != nil {
		return 0, dbError("achievements", err)
	}
	return n, nil
}

// Find resolves an achievement by id or code. Only uuid-shaped values are
// tried as ids.
func (s *AchievementService) Find(ctx context.Context, idOrCode string) (*models.Achievement, error) {
	var a models.Achievement
	err := s.DB.WithContext(ctx).Where("code = ?", idOrCode).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && uuid.Validate(idOrCode) == nil {
		err = s.DB.WithContext(ctx).Where("id = ?", idOrCode).First(&a).Error
	}
	if err != nil {
		return nil, dbError("achievements", err)
	}
	return &a, nil
}

// Award unlocks an achievement for a user. The insert is idempotent: a second
// call for the same pair changes nothing and credits no XP.
func (s *AchievementService) Award(ctx context.Context, userID, idOrCode string) (*AwardResult, error) {
	ach, err := s.Find(ctx, idOrCode)
	if err != nil {
		return nil, err
	}

	res := &AwardResult{Achievement: *ach}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prof models.UserProfile
		if err := lockProfile(tx, userID, &prof); err != nil {
			return err
		}

		ua := models.UserAchievement{UserID: userID, AchievementID: ach.ID}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
		if ins.Error != nil {
			if isUniqueViolation(ins.Error) {
				// the failed statement poisons a postgres tx; roll back instead of committing
				return errAlreadyUnlocked
			}
			return dbError("user_achievements", ins.Error)
		}
		if ins.RowsAffected == 0 {
			res.AlreadyUnlocked = true
			res.TotalXP, res.Level = prof.TotalXP, prof.Level
			return nil
		}

		leveled, err := applyXP(tx, &prof, ach.XPReward, "achievement:"+ach.Code)
		if err != nil {
			return err
		}
		res.XPAwarded = ach.XPReward
		res.LeveledUp = leveled
		res.TotalXP, res.Level = prof.TotalXP, prof.Level

		n := models.Notification{
			UserID:  userID,
			Type:    models.NotificationAchievement,
			Title:   fmt.Sprintf("%s Achievement unlocked: %s", ach.Icon, ach.Name),
			Message: fmt.Sprintf("%s (+%d XP)", ach.Description, ach.XPReward),
		}
		if err := tx.Create(&n).Error; err != nil {
			return dbError("notifications", err)
		}
		return nil
	})
	if errors.Is(err, errAlreadyUnlocked) {
		res.AlreadyUnlocked = true
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if res.AlreadyUnlocked {
		log.Printf("ℹ️ [ACH] %s already holds %s", userID, ach.Code)
	} else {
		log.Printf("🎖️ [ACH] Awarded %s → %s (+%d XP)", ach.Code, userID, ach.XPReward)
	}
	return res, nil
}

// UserAchievements lists a user's unlocks with their catalog entries. When
// the preload join fails (older schemas without the relation) it falls back
// to two plain queries stitched in memory.
func (s *AchievementService) UserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := s.DB.WithContext(ctx).Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&rows).Error
	if err == nil {
		return rows, nil
	}
	if isMissingTable(err) {
		return nil, dbError("user_achievements", err)
	}
	log.Printf("⚠️ [ACH] preload failed for %s, falling back to separate queries: %v", userID, err)

	rows = nil
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("unlocked_at DESC").Find(&rows).Error; err != nil {
		return nil, dbError("user_achievements", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AchievementID)
	}
	var catalog []models.Achievement
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&catalog).Error; err != nil {
		return nil, dbError("achievements", err)
	}
	byID := make(map[string]models.Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}
	for i := range rows {
		rows[i].Achievement = byID[rows[i].AchievementID]
	}
	return rows, nil
}

// AutoAward checks every triggered catalog entry against the user's current
// progress and awards the ones that are met. Awards can raise the level and
// unlock level triggers, so it repeats until a pass awards nothing. Failures
// are logged, never returned.
func (s *AchievementService) AutoAward(ctx context.Context, userID string) []string {
	var awarded []string
	for pass := 0; pass < len(models.CoreAchievements); pass++ {
		n := s.autoAwardPass(ctx, userID, &awarded)
		if n == 0 {
			break
		}
	}
	return awarded
}

func (s *AchievementService) autoAwardPass(ctx context.Context, userID string, awarded *[]string) int {
	var prof models.UserProfile
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error; err != nil {
		log.Printf("⚠️ [ACH] auto-award skipped for %s: %v", userID, err)
		return 0
	}
	var projects int64
	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("owner_id = ?", userID).Count(&projects).Error; err != nil {
		log.Printf("⚠️ [ACH] auto-award skipped for %s, project count failed: %v", userID, err)
		return 0
	}

	var held []string
	err := s.DB.WithContext(ctx).Model(&models.UserAchievement{}).
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", userID).
		Pluck("achievements.code", &held).Error
	if err != nil {
		log.Printf("⚠️ [ACH] auto-award skipped for %s, held achievements failed: %v", userID, err)
		return 0
	}
	holds := make(map[string]bool, len(held))
	for _, c := range held {
		holds[c] = true
	}

	count := 0
	for _, trig := range models.CoreAchievements {
		if len(trig.Threshold) == 0 || holds[trig.Code] {
			continue
		}
		if !meetsThreshold(&prof, projects, trig.Threshold) {
			continue
		}
		res, err := s.Award(ctx, userID, trig.Code)
		if err != nil {
			log.Printf("❌ [ACH] auto-award %s for %s failed: %v", trig.Code, userID, err)
			continue
		}
		if !res.AlreadyUnlocked {
			*awarded = append(*awarded, trig.Code)
			count++
		}
	}
	return count
}

func meetsThreshold(prof *models.UserProfile, projects int64, req map[string]int64) bool {
	for key, required := range req {
		switch key {
		case "event":
			// profile exists
		case "projects":
			if projects < required {
				return false
			}
		case "current_streak":
			if int64(prof.CurrentStreak) < required {
				return false
			}
		case "longest_streak":
			if int64(prof.LongestStreak) < required {
				return false
			}
		case "level":
			if int64(prof.Level) < required {
				return false
			}
		case "total_xp":
			if prof.TotalXP < required {
				return false
			}
		default:
			return false
		}
	}
	return true
}
