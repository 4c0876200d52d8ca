package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"aethex-api/db"
	"aethex-api/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a migrated, seeded in-memory database private to the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps sqlite transactions from locking each other out
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(gdb); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return gdb
}

func newProfile(t *testing.T, gdb *gorm.DB, username string) *models.UserProfile {
	t.Helper()
	p := &models.UserProfile{
		ID:           uuid.NewString(),
		Username:     username,
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Availability: models.AvailabilityAvailable,
		Level:        1,
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create profile %s: %v", username, err)
	}
	return p
}

func reload(t *testing.T, gdb *gorm.DB, id string) models.UserProfile {
	t.Helper()
	var p models.UserProfile
	if err := gdb.Where("id = ?", id).First(&p).Error; err != nil {
		t.Fatalf("reload %s: %v", id, err)
	}
	return p
}

func grantRole(t *testing.T, gdb *gorm.DB, userID, role string) {
	t.Helper()
	if err := NewRoleService(gdb).Assign(t.Context(), RoleRequest{UserID: userID, Role: role}); err != nil {
		t.Fatalf("assign %s to %s: %v", role, userID, err)
	}
}

func clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fieldRule(err error) map[string]string {
	if v, ok := err.(*ValidationError); ok {
		return v.Fields
	}
	return nil
}

type recordingAlerts struct {
	mu     sync.Mutex
	alerts []StaffAlert
}

func (r *recordingAlerts) Publish(a StaffAlert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recordingAlerts) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.alerts))
	for i, a := range r.alerts {
		out[i] = a.Kind
	}
	return out
}
