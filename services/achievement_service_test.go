package services

import (
	"errors"
	"sync"
	"testing"

	"aethex-api/models"

	"gorm.io/gorm"
)

func TestAwardIsIdempotent(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "twice")
	svc := NewAchievementService(gdb)

	first, err := svc.Award(t.Context(), prof.ID, "contributor")
	if err != nil {
		t.Fatalf("first award: %v", err)
	}
	if first.AlreadyUnlocked || first.XPAwarded != 500 {
		t.Fatalf("first award = %+v, want fresh unlock worth 500", first)
	}

	second, err := svc.Award(t.Context(), prof.ID, first.Achievement.ID)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if !second.AlreadyUnlocked || second.XPAwarded != 0 {
		t.Errorf("second award = %+v, want already unlocked with no XP", second)
	}

	got := reload(t, gdb, prof.ID)
	if got.TotalXP != 500 {
		t.Errorf("total_xp = %d, want 500", got.TotalXP)
	}
	var rows int64
	gdb.Model(&models.UserAchievement{}).Where("user_id = ?", prof.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("user_achievements rows = %d, want 1", rows)
	}
}

func TestConcurrentAwardsCreditOnce(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "racer")
	svc := NewAchievementService(gdb)

	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Award(t.Context(), prof.ID, "contributor")
			if err != nil {
				t.Errorf("award: %v", err)
				return
			}
			if !res.AlreadyUnlocked {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if fresh != 1 {
		t.Errorf("fresh unlocks = %d, want 1", fresh)
	}
	if got := reload(t, gdb, prof.ID); got.TotalXP != 500 {
		t.Errorf("total_xp = %d, want 500", got.TotalXP)
	}
}

func TestAwardErrors(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "lost")
	svc := NewAchievementService(gdb)

	if _, err := svc.Award(t.Context(), prof.ID, "no-such-achievement"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown achievement err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Award(t.Context(), "11111111-1111-1111-1111-111111111111", "welcome"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
}

func TestAwardCreatesNotification(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "notified")
	svc := NewAchievementService(gdb)

	if _, err := svc.Award(t.Context(), prof.ID, "welcome"); err != nil {
		t.Fatalf("award: %v", err)
	}
	var n models.Notification
	if err := gdb.Where("user_id = ? AND type = ?", prof.ID, models.NotificationAchievement).First(&n).Error; err != nil {
		t.Fatalf("achievement notification missing: %v", err)
	}
}

func TestCreateAchievement(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewAchievementService(gdb)

	a, err := svc.Create(t.Context(), CreateAchievementRequest{Name: "Bug Hunter", XPReward: 150})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Code != "bug-hunter" || a.Category != "general" {
		t.Errorf("achievement = %+v, want code bug-hunter in general", a)
	}

	if _, err := svc.Create(t.Context(), CreateAchievementRequest{Name: "Bug  hunter!"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate code err = %v, want ErrConflict", err)
	}
	if _, err := svc.Create(t.Context(), CreateAchievementRequest{Name: "Negative", XPReward: -1}); fieldRule(err)["xp_reward"] != "min" {
		t.Errorf("negative reward err = %v, want xp_reward min", err)
	}
}

func TestUserAchievementsIncludesCatalogEntry(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "collector")
	svc := NewAchievementService(gdb)

	if _, err := svc.Award(t.Context(), prof.ID, "welcome"); err != nil {
		t.Fatalf("award: %v", err)
	}
	list, err := svc.UserAchievements(t.Context(), prof.ID)
	if err != nil {
		t.Fatalf("UserAchievements: %v", err)
	}
	if len(list) != 1 || list[0].Achievement.Code != "welcome" {
		t.Fatalf("list = %+v, want the welcome unlock with its catalog entry", list)
	}
}

func TestActivateRestoresCatalog(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewAchievementService(gdb)

	gdb.Where("code = ?", "level-10").Delete(&models.Achievement{})
	n, err := svc.Activate(t.Context())
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if n != len(models.CoreAchievements) {
		t.Errorf("seeded = %d, want %d", n, len(models.CoreAchievements))
	}
	if _, err := svc.Find(t.Context(), "level-10"); err != nil {
		t.Errorf("level-10 missing after activate: %v", err)
	}
}

func TestFindOnlyTriesUUIDsAsIDs(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewAchievementService(gdb)

	queries := 0
	err := gdb.Callback().Query().Before("gorm:query").Register("count_achievement_queries", func(tx *gorm.DB) {
		if tx.Statement.Table == "achievements" {
			queries++
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := svc.Find(t.Context(), "no-such-code"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code err = %v, want ErrNotFound", err)
	}
	if queries != 1 {
		t.Errorf("non-uuid lookup ran %d queries, want 1 (code only)", queries)
	}

	welcome, err := svc.Find(t.Context(), "welcome")
	if err != nil {
		t.Fatalf("find welcome: %v", err)
	}
	queries = 0
	byID, err := svc.Find(t.Context(), welcome.ID)
	if err != nil || byID.Code != "welcome" {
		t.Fatalf("find by id = %+v, %v", byID, err)
	}
	if queries != 2 {
		t.Errorf("uuid lookup ran %d queries, want 2 (code then id)", queries)
	}
}

func TestAutoAwardSkipsPassWhenCountsFail(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "brokenstats")
	gdb.Model(&models.UserProfile{}).Where("id = ?", prof.ID).Updates(map[string]interface{}{"total_xp": 4500, "level": 5})
	if err := gdb.Migrator().DropTable(&models.Project{}); err != nil {
		t.Fatalf("drop projects: %v", err)
	}

	svc := NewAchievementService(gdb)
	if got := svc.AutoAward(t.Context(), prof.ID); len(got) != 0 {
		t.Errorf("awarded %v while the project count failed, want nothing", got)
	}
	var held int64
	gdb.Model(&models.UserAchievement{}).Where("user_id = ?", prof.ID).Count(&held)
	if held != 0 {
		t.Errorf("held = %d, want 0", held)
	}
}
