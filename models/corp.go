package models

import (
	"time"

	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractActive, ContractCompleted, ContractCancelled:
		return true
	}
	return false
}

// Contract is a Corp engagement with a client, shown in the Client Hub.
type Contract struct {
	ID          string         `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID    string         `gorm:"type:uuid;not null;index" json:"client_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ValueCents  int64          `gorm:"not null;default:0" json:"value_cents"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	Status      ContractStatus `gorm:"size:16;not null;default:'draft';index" json:"status"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	Timestamps
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	newID(&c.ID)
	return nil
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoid    InvoiceStatus = "void"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceVoid:
		return true
	}
	return false
}

type Invoice struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID    string        `gorm:"type:uuid;not null;index" json:"client_id"`
	ContractID  *string       `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Number      string        `gorm:"uniqueIndex;size:32;not null" json:"number"`
	AmountCents int64         `gorm:"not null" json:"amount_cents"`
	Currency    string        `gorm:"size:3;default:'USD'" json:"currency"`
	Status      InvoiceStatus `gorm:"size:16;not null;default:'draft';index" json:"status"`
	IssuedAt    *time.Time    `json:"issued_at,omitempty"`
	DueAt       *time.Time    `gorm:"index" json:"due_at,omitempty"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	Timestamps
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}
