package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"aethex-api/models"
)

func TestClientHubVisibility(t *testing.T) {
	gdb := openTestDB(t)
	alice := newProfile(t, gdb, "alice")
	bob := newProfile(t, gdb, "bob")
	staff := newProfile(t, gdb, "staffer")
	grantRole(t, gdb, staff.ID, models.RoleStaff)

	svc := NewCorpService(gdb, NewRoleService(gdb))
	ctx := t.Context()

	ca, err := svc.CreateContract(ctx, CreateContractRequest{ClientID: alice.ID, Title: "Website", ValueCents: 500000})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if _, err := svc.CreateContract(ctx, CreateContractRequest{ClientID: bob.ID, Title: "Game port", Status: "active"}); err != nil {
		t.Fatalf("create contract: %v", err)
	}

	aliceView, _ := svc.ViewerFor(ctx, alice.ID)
	staffView, _ := svc.ViewerFor(ctx, staff.ID)
	if aliceView.Staff || !staffView.Staff {
		t.Fatalf("viewer roles wrong: alice=%v staff=%v", aliceView.Staff, staffView.Staff)
	}

	mine, err := svc.Contracts(ctx, aliceView, "")
	if err != nil || len(mine) != 1 || mine[0].ID != ca.ID {
		t.Errorf("alice contracts = %v (%v), want only hers", mine, err)
	}
	all, _ := svc.Contracts(ctx, staffView, "")
	if len(all) != 2 {
		t.Errorf("staff contracts = %d, want 2", len(all))
	}
	active, _ := svc.Contracts(ctx, staffView, "active")
	if len(active) != 1 {
		t.Errorf("active contracts = %d, want 1", len(active))
	}

	bobView := Viewer{UserID: bob.ID}
	if _, err := svc.Contract(ctx, bobView, ca.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("bob reading alice's contract err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Contracts(ctx, aliceView, "pending"); fieldRule(err)["status"] != "oneof" {
		t.Errorf("unknown status filter err = %v", err)
	}
}

func TestContractStatusOverwrite(t *testing.T) {
	gdb := openTestDB(t)
	client := newProfile(t, gdb, "client")
	svc := NewCorpService(gdb, NewRoleService(gdb))

	c, err := svc.CreateContract(t.Context(), CreateContractRequest{ClientID: client.ID, Title: "Audit"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != models.ContractDraft || c.Currency != "USD" {
		t.Errorf("defaults = %s/%s, want draft/USD", c.Status, c.Currency)
	}
	// any valid status may follow any other
	for _, s := range []models.ContractStatus{models.ContractCompleted, models.ContractDraft} {
		got, err := svc.SetContractStatus(t.Context(), c.ID, s)
		if err != nil || got.Status != s {
			t.Errorf("SetContractStatus(%s) = %v, %v", s, got, err)
		}
	}
	if _, err := svc.SetContractStatus(t.Context(), c.ID, "paused"); fieldRule(err)["status"] != "oneof" {
		t.Errorf("invalid status err = %v", err)
	}
}

func TestInvoicesLifecycle(t *testing.T) {
	gdb := openTestDB(t)
	client := newProfile(t, gdb, "payer")
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := NewCorpService(gdb, NewRoleService(gdb))
	svc.Now = clock(now)

	past := now.Add(-48 * time.Hour)
	future := now.Add(72 * time.Hour)

	late, err := svc.CreateInvoice(t.Context(), CreateInvoiceRequest{ClientID: client.ID, AmountCents: 12345, Status: "sent", DueAt: &past})
	if err != nil {
		t.Fatalf("create late: %v", err)
	}
	if !strings.HasPrefix(late.Number, "INV-20260615-") {
		t.Errorf("number = %q, want INV-20260615-*", late.Number)
	}
	onTime, _ := svc.CreateInvoice(t.Context(), CreateInvoiceRequest{ClientID: client.ID, AmountCents: 100, Status: "sent", DueAt: &future})
	draft, _ := svc.CreateInvoice(t.Context(), CreateInvoiceRequest{ClientID: client.ID, AmountCents: 100, DueAt: &past})

	n, err := svc.MarkOverdue(t.Context())
	if err != nil || n != 1 {
		t.Fatalf("MarkOverdue = %d, %v; want 1", n, err)
	}
	statuses := map[string]models.InvoiceStatus{}
	var invs []models.Invoice
	gdb.Find(&invs)
	for _, i := range invs {
		statuses[i.ID] = i.Status
	}
	if statuses[late.ID] != models.InvoiceOverdue || statuses[onTime.ID] != models.InvoiceSent || statuses[draft.ID] != models.InvoiceDraft {
		t.Errorf("statuses after MarkOverdue = %v", statuses)
	}
	var overdueNote models.Notification
	if err := gdb.Where("user_id = ? AND title = ?", client.ID, "Invoice "+late.Number+" is overdue").First(&overdueNote).Error; err != nil {
		t.Errorf("client was not told about the overdue invoice: %v", err)
	}
	if n, _ := svc.MarkOverdue(t.Context()); n != 0 {
		t.Errorf("second MarkOverdue = %d, want 0", n)
	}

	paid, err := svc.SetInvoiceStatus(t.Context(), late.ID, models.InvoicePaid)
	if err != nil || paid.PaidAt == nil {
		t.Fatalf("mark paid = %+v, %v; want paid_at stamped", paid, err)
	}

	// sent, overdue and paid transitions notify the client, drafts do not
	var notes int64
	gdb.Model(&models.Notification{}).Where("user_id = ? AND type = ?", client.ID, models.NotificationInvoice).Count(&notes)
	if notes != 4 {
		t.Errorf("invoice notifications = %d, want 4", notes)
	}

	if _, err := svc.CreateInvoice(t.Context(), CreateInvoiceRequest{ClientID: client.ID, AmountCents: 0}); fieldRule(err)["amount_cents"] != "required" {
		t.Errorf("zero amount err = %v", err)
	}
	dup := late.Number
	if _, err := svc.CreateInvoice(t.Context(), CreateInvoiceRequest{ClientID: client.ID, AmountCents: 5, Number: dup}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate number err = %v, want ErrConflict", err)
	}
}

func TestTeamListing(t *testing.T) {
	gdb := openTestDB(t)
	a := newProfile(t, gdb, "anna")
	b := newProfile(t, gdb, "boris")
	newProfile(t, gdb, "outsider")
	grantRole(t, gdb, a.ID, models.RoleStaff)
	grantRole(t, gdb, b.ID, models.RoleAdmin)
	grantRole(t, gdb, b.ID, models.RoleStaff)
	gdb.Model(&models.UserProfile{}).Where("id = ?", b.ID).Update("availability", models.AvailabilityBusy)

	svc := NewCorpService(gdb, NewRoleService(gdb))
	team, err := svc.Team(t.Context(), "")
	if err != nil {
		t.Fatalf("Team: %v", err)
	}
	if len(team) != 2 {
		t.Fatalf("team = %+v, want anna and boris once each", team)
	}
	busy, _ := svc.Team(t.Context(), "busy")
	if len(busy) != 1 || busy[0].ID != b.ID {
		t.Errorf("busy team = %+v, want boris", busy)
	}
}
