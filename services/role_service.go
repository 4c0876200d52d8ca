package services

import (
	"context"
	"fmt"
	"log"

	"aethex-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleService struct {
	DB *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{DB: db}
}

// RolesOf returns the role names held by a user.
func (s *RoleService) RolesOf(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, dbError("user_roles", err)
	}
	return names, nil
}

// HasAny reports whether the user holds at least one of roles.
func (s *RoleService) HasAny(ctx context.Context, userID string, roles ...string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name IN ?", userID, roles).
		Count(&n).Error
	if err != nil {
		return false, dbError("user_roles", err)
	}
	return n > 0, nil
}

type RoleRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,max=32"`
}

// Assign grants a role. Granting a held role is a no-op.
func (s *RoleService) Assign(ctx context.Context, req RoleRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	var role models.Role
	if err := s.DB.WithContext(ctx).Where("name = ?", req.Role).First(&role).Error; err != nil {
		if err = dbError("roles", err); isNotFound(err) {
			return invalid("role", "exists")
		}
		return err
	}
	var prof models.UserProfile
	if err := s.DB.WithContext(ctx).Select("id").Where("id = ?", req.UserID).First(&prof).Error; err != nil {
		return dbError("user_profiles", err)
	}

	ur := models.UserRole{UserID: req.UserID, RoleID: role.ID}
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ur).Error; err != nil {
		return dbError("user_roles", err)
	}
	log.Printf("🛡️ [ROLES] %s granted %s", req.UserID, req.Role)
	return nil
}

func (s *RoleService) Revoke(ctx context.Context, req RoleRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND role_id IN (?)", req.UserID,
			s.DB.Model(&models.Role{}).Select("id").Where("name = ?", req.Role)).
		Delete(&models.UserRole{})
	if res.Error != nil {
		return dbError("user_roles", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user_roles: %w", ErrNotFound)
	}
	log.Printf("🛡️ [ROLES] %s revoked %s", req.UserID, req.Role)
	return nil
}

// MembersWith lists profiles holding any of roles.
func (s *RoleService) MembersWith(ctx context.Context, roles ...string) ([]models.UserProfile, error) {
	var out []models.UserProfile
	err := s.DB.WithContext(ctx).
		Where("id IN (?)", s.DB.Model(&models.UserRole{}).
			Select("user_roles.user_id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name IN ?", roles)).
		Order("full_name ASC, username ASC").
		Find(&out).Error
	if err != nil {
		return nil, dbError("user_profiles", err)
	}
	return out, nil
}
