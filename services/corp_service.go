package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"aethex-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Viewer is the caller of a Client Hub query. Staff see every client's rows.
type Viewer struct {
	UserID string
	Staff  bool
}

type CorpService struct {
	DB    *gorm.DB
	Roles *RoleService
	Now   func() time.Time
}

func NewCorpService(db *gorm.DB, roles *RoleService) *CorpService {
	return &CorpService{DB: db, Roles: roles, Now: time.Now}
}

// ViewerFor resolves whether userID is staff (staff or admin role).
func (s *CorpService) ViewerFor(ctx context.Context, userID string) (Viewer, error) {
	staff, err := s.Roles.HasAny(ctx, userID, models.RoleStaff, models.RoleAdmin)
	if err != nil {
		return Viewer{}, err
	}
	return Viewer{UserID: userID, Staff: staff}, nil
}

func (s *CorpService) scoped(ctx context.Context, v Viewer, status string) *gorm.DB {
	q := s.DB.WithContext(ctx)
	if !v.Staff {
		q = q.Where("client_id = ?", v.UserID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

func (s *CorpService) Contracts(ctx context.Context, v Viewer, status string) ([]models.Contract, error) {
	if status != "" && !models.ContractStatus(status).Valid() {
		return nil, invalid("status", "oneof")
	}
	var out []models.Contract
	if err := s.scoped(ctx, v, status).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, dbError("contracts", err)
	}
	return out, nil
}

func (s *CorpService) Contract(ctx context.Context, v Viewer, id string) (*models.Contract, error) {
	var c models.Contract
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, dbError("contracts", err)
	}
	if !v.Staff && c.ClientID != v.UserID {
		return nil, fmt.Errorf("contracts: %w", ErrForbidden)
	}
	return &c, nil
}

type CreateContractRequest struct {
	ClientID    string     `json:"client_id" validate:"required,uuid"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	ValueCents  int64      `json:"value_cents" validate:"min=0"`
	Currency    string     `json:"currency" validate:"omitempty,len=3"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (s *CorpService) CreateContract(ctx context.Context, req CreateContractRequest) (*models.Contract, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	status := models.ContractStatus(firstNonEmpty(req.Status, string(models.ContractDraft)))
	if !status.Valid() {
		return nil, invalid("status", "oneof")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, invalid("end_date", "gtefield")
	}
	c := models.Contract{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		ValueCents:  req.ValueCents,
		Currency:    strings.ToUpper(firstNonEmpty(req.Currency, "USD")),
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, dbError("contracts", err)
	}
	log.Printf("📄 [CORP] contract %s created for %s", c.ID, c.ClientID)
	return &c, nil
}

func (s *CorpService) SetContractStatus(ctx context.Context, id string, status models.ContractStatus) (*models.Contract, error) {
	if !status.Valid() {
		return nil, invalid("status", "oneof")
	}
	res := s.DB.WithContext(ctx).Model(&models.Contract{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, dbError("contracts", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("contracts: %w", ErrNotFound)
	}
	return s.Contract(ctx, Viewer{Staff: true}, id)
}

func (s *CorpService) Invoices(ctx context.Context, v Viewer, status string) ([]models.Invoice, error) {
	if status != "" && !models.InvoiceStatus(status).Valid() {
		return nil, invalid("status", "oneof")
	}
	var out []models.Invoice
	if err := s.scoped(ctx, v, status).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, dbError("invoices", err)
	}
	return out, nil
}

type CreateInvoiceRequest struct {
	ClientID    string     `json:"client_id" validate:"required,uuid"`
	ContractID  *string    `json:"contract_id" validate:"omitempty,uuid"`
	Number      string     `json:"number" validate:"max=32"`
	AmountCents int64      `json:"amount_cents" validate:"required,gt=0"`
	Currency    string     `json:"currency" validate:"omitempty,len=3"`
	Status      string     `json:"status"`
	DueAt       *time.Time `json:"due_at"`
}

// CreateInvoice stores a new invoice. When no number is given one is
// derived from the issue date and a short random suffix.
func (s *CorpService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	status := models.InvoiceStatus(firstNonEmpty(req.Status, string(models.InvoiceDraft)))
	if !status.Valid() {
		return nil, invalid("status", "oneof")
	}
	if req.ContractID != nil {
		var c models.Contract
		if err := s.DB.WithContext(ctx).Select("id", "client_id").Where("id = ?", *req.ContractID).First(&c).Error; err != nil {
			if err = dbError("contracts", err); isNotFound(err) {
				return nil, invalid("contract_id", "exists")
			}
			return nil, err
		}
		if c.ClientID != req.ClientID {
			return nil, invalid("contract_id", "client")
		}
	}

	now := s.Now().UTC()
	inv := models.Invoice{
		ClientID:    req.ClientID,
		ContractID:  req.ContractID,
		Number:      req.Number,
		AmountCents: req.AmountCents,
		Currency:    strings.ToUpper(firstNonEmpty(req.Currency, "USD")),
		Status:      status,
		IssuedAt:    &now,
		DueAt:       req.DueAt,
	}
	if inv.Number == "" {
		inv.Number = invoiceNumber(now)
	}
	if status == models.InvoicePaid {
		inv.PaidAt = &now
	}
	if err := s.DB.WithContext(ctx).Create(&inv).Error; err != nil {
		return nil, dbError("invoices", err)
	}
	log.Printf("🧾 [CORP] invoice %s (%d %s) for %s", inv.Number, inv.AmountCents, inv.Currency, inv.ClientID)
	s.notifyInvoice(ctx, &inv)
	return &inv, nil
}

func invoiceNumber(t time.Time) string {
	return fmt.Sprintf("INV-%s-%s", t.Format("20060102"), strings.ToUpper(shortID()))
}

// SetInvoiceStatus overwrites the status; moving to paid stamps paid_at.
func (s *CorpService) SetInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, invalid("status", "oneof")
	}
	updates := map[string]interface{}{"status": status}
	if status == models.InvoicePaid {
		updates["paid_at"] = s.Now().UTC()
	}
	res := s.DB.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, dbError("invoices", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("invoices: %w", ErrNotFound)
	}
	var inv models.Invoice
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, dbError("invoices", err)
	}
	s.notifyInvoice(ctx, &inv)
	return &inv, nil
}

func (s *CorpService) notifyInvoice(ctx context.Context, inv *models.Invoice) {
	if inv.Status == models.InvoiceDraft {
		return
	}
	n := models.Notification{
		UserID:  inv.ClientID,
		Type:    models.NotificationInvoice,
		Title:   fmt.Sprintf("Invoice %s is %s", inv.Number, inv.Status),
		Message: fmt.Sprintf("Amount: %s", formatCents(inv.AmountCents, inv.Currency)),
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("⚠️ [CORP] invoice notification for %s failed: %v", inv.ClientID, err)
	}
}

// MarkOverdue flips sent invoices whose due date has passed and tells each
// client.
func (s *CorpService) MarkOverdue(ctx context.Context) (int64, error) {
	var due []models.Invoice
	err := s.DB.WithContext(ctx).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", models.InvoiceSent, s.Now().UTC()).
		Find(&due).Error
	if err != nil {
		return 0, dbError("invoices", err)
	}
	if len(due) == 0 {
		return 0, nil
	}
	ids := make([]string, len(due))
	for i, inv := range due {
		ids[i] = inv.ID
	}
	res := s.DB.WithContext(ctx).Model(&models.Invoice{}).
		Where("id IN ? AND status = ?", ids, models.InvoiceSent).
		Update("status", models.InvoiceOverdue)
	if res.Error != nil {
		return 0, dbError("invoices", res.Error)
	}
	for i := range due {
		due[i].Status = models.InvoiceOverdue
		s.notifyInvoice(ctx, &due[i])
	}
	return res.RowsAffected, nil
}

// TeamMember is a staff profile as shown on the Staff dashboard.
type TeamMember struct {
	ID           string              `json:"id"`
	Username     string              `json:"username"`
	FullName     string              `json:"full_name"`
	AvatarURL    string              `json:"avatar_url,omitempty"`
	Arm          models.Arm          `json:"arm,omitempty"`
	Availability models.Availability `json:"availability"`
}

func (s *CorpService) Team(ctx context.Context, availability string) ([]TeamMember, error) {
	profs, err := s.Roles.MembersWith(ctx, models.RoleStaff, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	out := make([]TeamMember, 0, len(profs))
	for _, p := range profs {
		if availability != "" && string(p.Availability) != availability {
			continue
		}
		out = append(out, TeamMember{
			ID:           p.ID,
			Username:     p.Username,
			FullName:     p.FullName,
			AvatarURL:    p.AvatarURL,
			Arm:          p.Arm,
			Availability: p.Availability,
		})
	}
	return out, nil
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
