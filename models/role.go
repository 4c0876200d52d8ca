package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleClient = "client"
	RoleMember = "member"
)

var DefaultRoles = []Role{
	{Name: RoleAdmin, Description: "Full platform administration"},
	{Name: RoleStaff, Description: "AeThex team member"},
	{Name: RoleClient, Description: "Corp client with Client Hub access"},
	{Name: RoleMember, Description: "Community member"},
}

type Role struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

type UserRole struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_role,priority:1" json:"user_id"`
	RoleID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_role,priority:2" json:"role_id"`
	Role      Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ur *UserRole) BeforeCreate(tx *gorm.DB) error {
	newID(&ur.ID)
	return nil
}
