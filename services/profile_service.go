package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"aethex-api/models"
	"aethex-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvatarStore persists uploaded avatar images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

const MaxAvatarBytes = 2 * 1024 * 1024

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type ProfileService struct {
	DB           *gorm.DB
	Achievements *AchievementService
	Avatars      AvatarStore // nil disables avatar uploads
}

func NewProfileService(db *gorm.DB, achievements *AchievementService, avatars AvatarStore) *ProfileService {
	return &ProfileService{DB: db, Achievements: achievements, Avatars: avatars}
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FullName  *string `json:"full_name" validate:"omitempty,max=120"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Arm       *string `json:"arm"`
}

// Ensure returns the caller's profile, creating it on first sight. The
// username is derived from the email and suffixed when already taken.
func (s *ProfileService) Ensure(ctx context.Context, userID, email string) (*models.UserProfile, bool, error) {
	var prof models.UserProfile
	err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error
	if err == nil {
		return &prof, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, dbError("user_profiles", err)
	}

	base := utils.SuggestUsername(email)
	prof = models.UserProfile{
		ID:           userID,
		Username:     base,
		Availability: models.AvailabilityAvailable,
		Level:        1,
	}
	for attempt := 0; attempt < 5; attempt++ {
		err = s.DB.WithContext(ctx).Create(&prof).Error
		if err == nil || !isUniqueViolation(err) {
			break
		}
		// Another request may have created the same profile concurrently.
		var existing models.UserProfile
		if s.DB.WithContext(ctx).Where("id = ?", userID).First(&existing).Error == nil {
			return &existing, false, nil
		}
		prof.Username = fmt.Sprintf("%s_%s", base, shortID())
	}
	if err != nil {
		return nil, false, dbError("user_profiles", err)
	}
	log.Printf("👤 [PROFILE] created %s (%s)", prof.Username, userID)

	if s.Achievements != nil {
		if unlocked := s.Achievements.AutoAward(ctx, userID); len(unlocked) > 0 {
			if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error; err != nil {
				log.Printf("⚠️ [PROFILE] refresh after awards for %s failed: %v", userID, err)
			}
		}
	}
	return &prof, true, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var prof models.UserProfile
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&prof).Error; err != nil {
		return nil, dbError("user_profiles", err)
	}
	return &prof, nil
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	u, err := utils.NormalizeUsername(username)
	if err != nil {
		return nil, fmt.Errorf("user_profiles: %w", ErrNotFound)
	}
	var prof models.UserProfile
	if err := s.DB.WithContext(ctx).Where("username = ?", u).First(&prof).Error; err != nil {
		return nil, dbError("user_profiles", err)
	}
	return &prof, nil
}

// Update overwrites the provided fields. Gamification counters are not
// writable here.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*models.UserProfile, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Username != nil {
		u, err := utils.NormalizeUsername(*req.Username)
		if err != nil {
			return nil, invalid("username", "format")
		}
		updates["username"] = u
	}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.Arm != nil {
		arm := models.Arm(strings.ToLower(*req.Arm))
		if !arm.Valid() {
			return nil, invalid("arm", "oneof")
		}
		updates["arm"] = arm
	}

	if len(updates) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, dbError("user_profiles", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("user_profiles: %w", ErrNotFound)
		}
	}
	return s.Get(ctx, userID)
}

func (s *ProfileService) SetAvailability(ctx context.Context, userID string, a models.Availability) (*models.UserProfile, error) {
	if !a.Valid() {
		return nil, invalid("availability", "oneof")
	}
	res := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", userID).Update("availability", a)
	if res.Error != nil {
		return nil, dbError("user_profiles", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("user_profiles: %w", ErrNotFound)
	}
	return s.Get(ctx, userID)
}

// UploadAvatar stores the image and points the profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, filename, contentType string, size int64, body io.Reader) (*models.UserProfile, error) {
	if s.Avatars == nil {
		return nil, errors.New("avatar storage is not configured")
	}
	if size <= 0 || size > MaxAvatarBytes {
		return nil, invalid("avatar", "max_size")
	}
	ext, ok := avatarTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, invalid("avatar", "image_type")
	}
	if e := strings.ToLower(filepath.Ext(filename)); e == ".jpeg" || e == ext {
		ext = e
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	url, err := s.Avatars.Upload(ctx, key, body, size, contentType)
	if err != nil {
		log.Printf("❌ [PROFILE] avatar upload failed for %s: %v", userID, err)
		return nil, err
	}
	return s.Update(ctx, userID, UpdateProfileRequest{AvatarURL: &url})
}

// Search matches username or full name, case-insensitively.
func (s *ProfileService) Search(ctx context.Context, query string, limit int) ([]models.UserProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := s.DB.WithContext(ctx).Model(&models.UserProfile{}).Order("username ASC").Limit(limit)
	if query = strings.TrimSpace(query); query != "" {
		term := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ?", term, term)
	}
	var out []models.UserProfile
	if err := q.Find(&out).Error; err != nil {
		return nil, dbError("user_profiles", err)
	}
	return out, nil
}

// LeaderboardEntry is the public slice of a profile shown on the leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	TotalXP       int64  `json:"total_xp"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"current_streak"`
}

func (s *ProfileService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	var profs []models.UserProfile
	if err := s.DB.WithContext(ctx).Order("total_xp DESC, username ASC").Limit(limit).Find(&profs).Error; err != nil {
		return nil, dbError("user_profiles", err)
	}
	out := make([]LeaderboardEntry, len(profs))
	for i, p := range profs {
		out[i] = LeaderboardEntry{
			Rank:          i + 1,
			Username:      p.Username,
			FullName:      p.FullName,
			AvatarURL:     p.AvatarURL,
			TotalXP:       p.TotalXP,
			Level:         p.Level,
			CurrentStreak: p.CurrentStreak,
		}
	}
	return out, nil
}
