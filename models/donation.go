package models

import (
	"time"

	"gorm.io/gorm"
)

// DonationTier is static Donate page config.
type DonationTier struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Perks       string `json:"perks"`
}

var DonationTiers = []DonationTier{
	{Code: "supporter", Name: "Supporter", AmountCents: 500, Perks: "Name on the Foundation supporters wall"},
	{Code: "patron", Name: "Patron", AmountCents: 2500, Perks: "Supporter perks plus a Discord patron role"},
	{Code: "champion", Name: "Champion", AmountCents: 10000, Perks: "Patron perks plus early access to GameForge builds"},
}

func FindDonationTier(code string) (DonationTier, bool) {
	for _, t := range DonationTiers {
		if t.Code == code {
			return t, true
		}
	}
	return DonationTier{}, false
}

type DonationPledge struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null;index" json:"email"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Currency    string    `gorm:"size:3;default:'USD'" json:"currency"`
	Tier        string    `gorm:"size:32" json:"tier,omitempty"`
	Message     string    `gorm:"type:text" json:"message,omitempty"`
	Status      string    `gorm:"size:16;default:'pledged'" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DonationPledge) TableName() string { return "donations" }

func (d *DonationPledge) BeforeCreate(tx *gorm.DB) error {
	newID(&d.ID)
	return nil
}
