package services

import (
	"context"
	"log"
	"strings"

	"aethex-api/models"
	"aethex-api/utils"

	"gorm.io/gorm"
)

var projectStatuses = map[string]bool{"planning": true, "in_progress": true, "shipped": true}

type ProjectService struct {
	DB           *gorm.DB
	Achievements *AchievementService
}

func NewProjectService(db *gorm.DB, achievements *AchievementService) *ProjectService {
	return &ProjectService{DB: db, Achievements: achievements}
}

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Status      string `json:"status"`
	Arm         string `json:"arm"`
}

// ProjectResult carries the new project and any achievements it unlocked.
type ProjectResult struct {
	Project  *models.Project `json:"project"`
	Unlocked []string        `json:"unlocked,omitempty"`
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, req CreateProjectRequest) (*ProjectResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := Validate(req); err != nil {
		return nil, err
	}
	status := firstNonEmpty(req.Status, "planning")
	if !projectStatuses[status] {
		return nil, invalid("status", "oneof")
	}
	arm := models.Arm(strings.ToLower(req.Arm))
	if !arm.Valid() {
		return nil, invalid("arm", "oneof")
	}
	sl := utils.Slugify(req.Name, 96)
	if sl == "" {
		return nil, invalid("name", "slug")
	}

	p := models.Project{
		OwnerID:     ownerID,
		Name:        req.Name,
		Slug:        sl,
		Description: req.Description,
		Status:      status,
		Arm:         arm,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, dbError("projects", err)
	}
	log.Printf("🚀 [PROJECT] %s created %q", ownerID, p.Slug)

	res := &ProjectResult{Project: &p}
	if s.Achievements != nil {
		res.Unlocked = s.Achievements.AutoAward(ctx, ownerID)
	}
	return res, nil
}

func (s *ProjectService) Mine(ctx context.Context, ownerID string) ([]models.Project, error) {
	var out []models.Project
	if err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, dbError("projects", err)
	}
	return out, nil
}
