package services

import (
	"errors"
	"slices"
	"testing"

	"aethex-api/models"
)

func TestRoleAssignAndRevoke(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "moderator")
	svc := NewRoleService(gdb)
	ctx := t.Context()

	for i := 0; i < 2; i++ {
		if err := svc.Assign(ctx, RoleRequest{UserID: prof.ID, Role: models.RoleStaff}); err != nil {
			t.Fatalf("assign run %d: %v", i+1, err)
		}
	}
	if err := svc.Assign(ctx, RoleRequest{UserID: prof.ID, Role: models.RoleClient}); err != nil {
		t.Fatalf("assign client: %v", err)
	}

	roles, err := svc.RolesOf(ctx, prof.ID)
	if err != nil || !slices.Equal(roles, []string{"client", "staff"}) {
		t.Fatalf("RolesOf = %v (%v), want [client staff]", roles, err)
	}
	if ok, _ := svc.HasAny(ctx, prof.ID, models.RoleAdmin, models.RoleStaff); !ok {
		t.Error("HasAny(admin, staff) = false")
	}
	if ok, _ := svc.HasAny(ctx, prof.ID, models.RoleAdmin); ok {
		t.Error("HasAny(admin) = true")
	}

	if err := svc.Revoke(ctx, RoleRequest{UserID: prof.ID, Role: models.RoleStaff}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := svc.Revoke(ctx, RoleRequest{UserID: prof.ID, Role: models.RoleStaff}); !errors.Is(err, ErrNotFound) {
		t.Errorf("second revoke err = %v, want ErrNotFound", err)
	}
}

func TestAssignRejectsUnknownRoleAndUser(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "someone")
	svc := NewRoleService(gdb)

	if err := svc.Assign(t.Context(), RoleRequest{UserID: prof.ID, Role: "wizard"}); fieldRule(err)["role"] != "exists" {
		t.Errorf("unknown role err = %v", err)
	}
	if err := svc.Assign(t.Context(), RoleRequest{UserID: "33333333-3333-3333-3333-333333333333", Role: models.RoleStaff}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user err = %v, want ErrNotFound", err)
	}
	if err := svc.Assign(t.Context(), RoleRequest{UserID: "not-a-uuid", Role: models.RoleStaff}); fieldRule(err)["user_id"] != "uuid" {
		t.Errorf("bad user id err = %v", err)
	}
}
