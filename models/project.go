package models

import "gorm.io/gorm"

type Project struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID     string `gorm:"type:uuid;not null;index;uniqueIndex:idx_owner_slug,priority:1" json:"owner_id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"size:96;not null;uniqueIndex:idx_owner_slug,priority:2" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"size:16;default:'planning'" json:"status"` // planning | in_progress | shipped
	Arm         Arm    `gorm:"size:16" json:"arm,omitempty"`
	Timestamps
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ID)
	return nil
}
