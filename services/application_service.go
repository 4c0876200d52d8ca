package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"aethex-api/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GenericSubmitFailure is the only message shown to applicants when an insert fails.
const GenericSubmitFailure = "We couldn't submit your application. Please try again."

type ApplicationService struct {
	DB           *gorm.DB
	Achievements *AchievementService
	Alerts       AlertPublisher
}

func NewApplicationService(db *gorm.DB, achievements *AchievementService, alerts AlertPublisher) *ApplicationService {
	return &ApplicationService{DB: db, Achievements: achievements, Alerts: alerts}
}

type SubmitApplicationRequest struct {
	Type            string   `json:"type" validate:"required,oneof=contributor career"`
	OpportunityID   *string  `json:"opportunity_id" validate:"omitempty,uuid"`
	FullName        string   `json:"full_name" validate:"required,max=120"`
	Email           string   `json:"email" validate:"required,looseemail"`
	Location        string   `json:"location" validate:"max=120"`
	RoleInterest    string   `json:"role_interest" validate:"max=120"`
	PrimarySkill    string   `json:"primary_skill" validate:"max=120"`
	ExperienceLevel string   `json:"experience_level" validate:"max=32"`
	Availability    string   `json:"availability" validate:"max=64"`
	PortfolioURL    string   `json:"portfolio_url" validate:"omitempty,url"`
	ResumeURL       string   `json:"resume_url" validate:"omitempty,url"`
	Interests       []string `json:"interests" validate:"max=20,dive,max=64"`
	Message         string   `json:"message" validate:"max=5000"`
}

// trackRequired lists fields each track must fill in beyond name and email.
var trackRequired = map[models.ApplicationType][]string{
	models.ApplicationContributor: {"primary_skill", "availability"},
	models.ApplicationCareer:      {"role_interest", "experience_level"},
}

func (r *SubmitApplicationRequest) trim() {
	for _, f := range []*string{&r.Type, &r.FullName, &r.Email, &r.Location, &r.RoleInterest,
		&r.PrimarySkill, &r.ExperienceLevel, &r.Availability, &r.PortfolioURL, &r.ResumeURL, &r.Message} {
		*f = strings.TrimSpace(*f)
	}
	r.Type = strings.ToLower(r.Type)
	r.Email = strings.ToLower(r.Email)
}

func (r *SubmitApplicationRequest) value(field string) string {
	switch field {
	case "primary_skill":
		return r.PrimarySkill
	case "availability":
		return r.Availability
	case "role_interest":
		return r.RoleInterest
	case "experience_level":
		return r.ExperienceLevel
	}
	return ""
}

// Submit validates and stores one application. userID is empty for
// anonymous submissions.
func (s *ApplicationService) Submit(ctx context.Context, userID string, req SubmitApplicationRequest) (*models.Application, error) {
	req.trim()
	if err := Validate(req); err != nil {
		return nil, err
	}
	typ := models.ApplicationType(req.Type)
	missing := &ValidationError{Fields: map[string]string{}}
	for _, f := range trackRequired[typ] {
		if req.value(f) == "" {
			missing.Fields[f] = "required"
		}
	}
	if len(missing.Fields) > 0 {
		return nil, missing
	}

	if req.OpportunityID != nil {
		var opp models.Opportunity
		if err := s.DB.WithContext(ctx).Where("id = ? AND published = ?", *req.OpportunityID, true).First(&opp).Error; err != nil {
			if err = dbError("opportunities", err); isNotFound(err) {
				return nil, invalid("opportunity_id", "exists")
			}
			return nil, err
		}
		if opp.Track != typ {
			return nil, invalid("opportunity_id", "track")
		}
	}

	interests := make([]string, 0, len(req.Interests))
	for _, i := range req.Interests {
		if i = strings.TrimSpace(i); i != "" {
			interests = append(interests, i)
		}
	}

	app := models.Application{
		Type:            typ,
		OpportunityID:   req.OpportunityID,
		FullName:        req.FullName,
		Email:           req.Email,
		Location:        req.Location,
		RoleInterest:    req.RoleInterest,
		PrimarySkill:    req.PrimarySkill,
		ExperienceLevel: req.ExperienceLevel,
		Availability:    req.Availability,
		PortfolioURL:    req.PortfolioURL,
		ResumeURL:       req.ResumeURL,
		Interests:       strings.Join(interests, ","),
		Message:         req.Message,
		Status:          models.ApplicationStatusNew,
	}
	if userID != "" {
		app.UserID = &userID
	}
	if err := s.DB.WithContext(ctx).Create(&app).Error; err != nil {
		log.Printf("❌ [APPLY] insert failed for %s: %v", app.Email, err)
		return nil, dbError("applications", err)
	}
	log.Printf("📨 [APPLY] %s application from %s (%s)", app.Type, app.FullName, app.ID)

	publish(s.Alerts, StaffAlert{
		Kind:    "application",
		Title:   fmt.Sprintf("New %s application", app.Type),
		Summary: app.FullName,
		Fields: [][2]string{
			{"Email", app.Email},
			{"Skill", firstNonEmpty(app.PrimarySkill, app.RoleInterest)},
			{"Availability", app.Availability},
		},
	})
	return &app, nil
}

type ApplicationFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

func (s *ApplicationService) List(ctx context.Context, f ApplicationFilter) ([]models.Application, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Application{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		if !models.ApplicationStatus(f.Status).Valid() {
			return nil, 0, invalid("status", "oneof")
		}
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbError("applications", err)
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	var out []models.Application
	if err := q.Order("submitted_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, 0, dbError("applications", err)
	}
	return out, total, nil
}

// UpdateStatus overwrites the review status. Accepting a signed-in
// contributor unlocks the "contributor" achievement.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, invalid("status", "oneof")
	}
	res := s.DB.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, dbError("applications", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("applications: %w", ErrNotFound)
	}
	var app models.Application
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, dbError("applications", err)
	}
	log.Printf("📝 [APPLY] %s → %s", id, status)

	if status == models.ApplicationStatusAccepted && app.Type == models.ApplicationContributor &&
		app.UserID != nil && s.Achievements != nil {
		if _, err := s.Achievements.Award(ctx, *app.UserID, "contributor"); err != nil {
			log.Printf("⚠️ [APPLY] contributor award for %s failed: %v", *app.UserID, err)
		}
	}
	return &app, nil
}

type CreateOpportunityRequest struct {
	Title     string `json:"title" validate:"required,max=160"`
	Slug      string `json:"slug" validate:"max=96"`
	Arm       string `json:"arm"`
	Track     string `json:"track" validate:"required,oneof=contributor career"`
	Summary   string `json:"summary" validate:"max=5000"`
	Location  string `json:"location" validate:"max=120"`
	Published bool   `json:"published"`
}

func (s *ApplicationService) CreateOpportunity(ctx context.Context, req CreateOpportunityRequest) (*models.Opportunity, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	arm := models.Arm(strings.ToLower(req.Arm))
	if !arm.Valid() {
		return nil, invalid("arm", "oneof")
	}
	sl := slug.Make(firstNonEmpty(req.Slug, req.Title))
	if sl == "" {
		return nil, invalid("slug", "slug")
	}
	opp := models.Opportunity{
		Slug:      sl,
		Title:     req.Title,
		Arm:       arm,
		Track:     models.ApplicationType(req.Track),
		Summary:   req.Summary,
		Location:  req.Location,
		Published: req.Published,
	}
	if err := s.DB.WithContext(ctx).Create(&opp).Error; err != nil {
		return nil, dbError("opportunities", err)
	}
	return &opp, nil
}

// Opportunities lists published openings, optionally narrowed to one arm or track.
func (s *ApplicationService) Opportunities(ctx context.Context, arm, track string) ([]models.Opportunity, error) {
	q := s.DB.WithContext(ctx).Where("published = ?", true)
	if arm != "" {
		q = q.Where("arm = ?", arm)
	}
	if track != "" {
		q = q.Where("track = ?", track)
	}
	var out []models.Opportunity
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, dbError("opportunities", err)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
