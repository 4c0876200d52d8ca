package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"aethex-api/models"

	"gorm.io/gorm"
)

// MinPledgeCents is the smallest custom pledge accepted.
const MinPledgeCents = 100

type DonationService struct {
	DB     *gorm.DB
	Alerts AlertPublisher
}

func NewDonationService(db *gorm.DB, alerts AlertPublisher) *DonationService {
	return &DonationService{DB: db, Alerts: alerts}
}

func (s *DonationService) Tiers() []models.DonationTier {
	return models.DonationTiers
}

type PledgeRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,looseemail"`
	Tier        string `json:"tier" validate:"max=32"`
	AmountCents int64  `json:"amount_cents" validate:"min=0,max=100000000"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Message     string `json:"message" validate:"max=2000"`
}

// Pledge records a donation pledge. A tier fixes the amount; without one
// the caller's custom amount is used.
func (s *DonationService) Pledge(ctx context.Context, req PledgeRequest) (*models.DonationPledge, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := Validate(req); err != nil {
		return nil, err
	}

	amount := req.AmountCents
	if req.Tier != "" {
		tier, ok := models.FindDonationTier(req.Tier)
		if !ok {
			return nil, invalid("tier", "oneof")
		}
		amount = tier.AmountCents
	}
	if amount < MinPledgeCents {
		return nil, invalid("amount_cents", "min")
	}

	d := models.DonationPledge{
		Name:        req.Name,
		Email:       req.Email,
		AmountCents: amount,
		Currency:    strings.ToUpper(firstNonEmpty(req.Currency, "USD")),
		Tier:        req.Tier,
		Message:     strings.TrimSpace(req.Message),
		Status:      "pledged",
	}
	if err := s.DB.WithContext(ctx).Create(&d).Error; err != nil {
		log.Printf("❌ [DONATE] insert failed for %s: %v", d.Email, err)
		return nil, dbError("donations", err)
	}
	log.Printf("💜 [DONATE] %s pledged %d %s", d.Name, d.AmountCents, d.Currency)

	publish(s.Alerts, StaffAlert{
		Kind:    "donation",
		Title:   "New donation pledge",
		Summary: fmt.Sprintf("%s pledged %s", d.Name, formatCents(d.AmountCents, d.Currency)),
		Fields:  [][2]string{{"Tier", firstNonEmpty(d.Tier, "custom")}, {"Email", d.Email}},
	})
	return &d, nil
}

func (s *DonationService) List(ctx context.Context, limit int) ([]models.DonationPledge, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.DonationPledge
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, dbError("donations", err)
	}
	return out, nil
}
