package models

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationType string

const (
	ApplicationContributor ApplicationType = "contributor"
	ApplicationCareer      ApplicationType = "career"
)

type ApplicationStatus string

const (
	ApplicationStatusNew       ApplicationStatus = "new"
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusNew, ApplicationStatusReviewing, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is a denormalized Opportunities form submission.
type Application struct {
	ID              string            `gorm:"primaryKey;type:uuid" json:"id"`
	Type            ApplicationType   `gorm:"size:16;not null;index" json:"type"`
	OpportunityID   *string           `gorm:"type:uuid;index" json:"opportunity_id,omitempty"`
	UserID          *string           `gorm:"type:uuid;index" json:"user_id,omitempty"` // set when submitted signed-in
	FullName        string            `gorm:"not null" json:"full_name"`
	Email           string            `gorm:"not null;index" json:"email"`
	Location        string            `json:"location,omitempty"`
	RoleInterest    string            `json:"role_interest,omitempty"`
	PrimarySkill    string            `json:"primary_skill,omitempty"`
	ExperienceLevel string            `json:"experience_level,omitempty"`
	Availability    string            `json:"availability,omitempty"`
	PortfolioURL    string            `gorm:"type:text" json:"portfolio_url,omitempty"`
	ResumeURL       string            `gorm:"type:text" json:"resume_url,omitempty"`
	Interests       string            `gorm:"type:text" json:"interests,omitempty"` // comma separated
	Message         string            `gorm:"type:text" json:"message,omitempty"`
	Status          ApplicationStatus `gorm:"size:16;not null;default:'new';index" json:"status"`
	SubmittedAt     time.Time         `gorm:"autoCreateTime" json:"submitted_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

// Opportunity is a published role or program listed on the Opportunities page.
type Opportunity struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	Slug      string          `gorm:"uniqueIndex;size:96;not null" json:"slug"`
	Title     string          `gorm:"not null" json:"title"`
	Arm       Arm             `gorm:"size:16" json:"arm"`
	Track     ApplicationType `gorm:"size:16;not null" json:"track"`
	Summary   string          `gorm:"type:text" json:"summary"`
	Location  string          `json:"location"`
	Published bool            `gorm:"default:false;index" json:"published"`
	Timestamps
}

func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	newID(&o.ID)
	return nil
}
