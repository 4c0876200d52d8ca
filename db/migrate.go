package db

import (
	"fmt"
	"log"

	"aethex-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table the API owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.UserProfile{},
		&models.Role{},
		&models.UserRole{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Opportunity{},
		&models.Application{},
		&models.Contract{},
		&models.Invoice{},
		&models.Notification{},
		&models.Project{},
		&models.DonationPledge{},
	}
}

func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Seed inserts default roles and the core achievement catalog. Safe to re-run.
func Seed(db *gorm.DB) error {
	for _, r := range models.DefaultRoles {
		role := r
		if err := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
	}
	n, err := SeedAchievements(db)
	if err != nil {
		return err
	}
	log.Printf("🌱 [SEED] %d roles, %d achievements ensured", len(models.DefaultRoles), n)
	return nil
}

// SeedAchievements upserts the core catalog by code so renamed or re-priced
// entries pick up their new values.
func SeedAchievements(db *gorm.DB) (int, error) {
	for _, trig := range models.CoreAchievements {
		a := trig.Achievement
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "category", "xp_reward", "updated_at"}),
		}).Create(&a).Error
		if err != nil {
			return 0, fmt.Errorf("seed achievement %s: %w", a.Code, err)
		}
	}
	return len(models.CoreAchievements), nil
}
