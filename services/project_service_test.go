package services

import (
	"errors"
	"slices"
	"testing"
)

func TestCreateProjectUnlocksFirstProject(t *testing.T) {
	gdb := openTestDB(t)
	prof := newProfile(t, gdb, "maker")
	svc := NewProjectService(gdb, NewAchievementService(gdb))

	res, err := svc.Create(t.Context(), prof.ID, CreateProjectRequest{Name: "  Nova Engine ", Arm: "gameforge"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Project.Slug != "nova-engine" || res.Project.Status != "planning" {
		t.Errorf("project = %+v", res.Project)
	}
	if !slices.Contains(res.Unlocked, "first-project") {
		t.Errorf("unlocked = %v, want first-project", res.Unlocked)
	}

	second, err := svc.Create(t.Context(), prof.ID, CreateProjectRequest{Name: "Side Quest"})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if slices.Contains(second.Unlocked, "first-project") {
		t.Error("first-project unlocked twice")
	}

	if _, err := svc.Create(t.Context(), prof.ID, CreateProjectRequest{Name: "Nova engine"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate slug err = %v, want ErrConflict", err)
	}
	if _, err := svc.Create(t.Context(), prof.ID, CreateProjectRequest{Name: "X", Status: "abandoned"}); fieldRule(err)["status"] != "oneof" {
		t.Errorf("bad status err = %v", err)
	}

	mine, err := svc.Mine(t.Context(), prof.ID)
	if err != nil || len(mine) != 2 {
		t.Errorf("Mine = %d projects (%v), want 2", len(mine), err)
	}
}
