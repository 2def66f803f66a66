package services

import (
	"context"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/billing"
	"go-print-erp/internal/models"
	"go-print-erp/internal/money"
	"go-print-erp/internal/pagination"

	"gorm.io/gorm"
)

type PaymentInput struct {
	Type      models.PaymentType `json:"type" binding:"required,oneof=cash cheque UPI"`
	InvoiceID uint               `json:"invoiceId" binding:"required"`
	DateTime  *time.Time         `json:"dateTime"`
	Amount    float64            `json:"amount" binding:"gt=0"`
	Reference string             `json:"reference"`
	Notes     string             `json:"notes"`
}

// PaymentFilter holds the filters of the payment list.
type PaymentFilter struct {
	pagination.Params
	InvoiceID uint               `form:"invoiceId"`
	Type      models.PaymentType `form:"type" binding:"omitempty,oneof=cash cheque UPI"`
	From      *time.Time         `form:"from" time_format:"2006-01-02"`
	To        *time.Time         `form:"to" time_format:"2006-01-02"`
}

// PaymentService keeps the ledger. Every change re-derives the invoice's
// paidAmount and dueAmount from the live payments.
type PaymentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db, now: time.Now}
}

func (s *PaymentService) Create(ctx context.Context, actor auth.Principal, in PaymentInput) (*models.Payment, error) {
	now := s.now()
	fields := apperr.FieldErrors{}
	switch in.Type {
	case models.PaymentCash, models.PaymentCheque, models.PaymentUPI:
	default:
		fields.Add("type", "type must be one of [cash cheque UPI]")
	}
	if in.InvoiceID == 0 {
		fields.Add("invoiceId", "invoiceId is required")
	}
	if in.Amount <= 0 {
		fields.Add("amount", "amount must be greater than 0")
	}
	if in.DateTime != nil && in.DateTime.After(now) {
		fields.Add("dateTime", "dateTime cannot be in the future")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	payment := models.Payment{
		Type:       in.Type,
		InvoiceID:  in.InvoiceID,
		DateTime:   now,
		Amount:     money.Round2(in.Amount),
		Reference:  in.Reference,
		Notes:      in.Notes,
		RecordedBy: actor.ID,
	}
	if in.DateTime != nil {
		payment.DateTime = *in.DateTime
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := requireInvoice(tx, in.InvoiceID)
		if err != nil {
			return err
		}
		if payment.Amount > inv.DueAmount {
			return apperr.Field("amount", "amount exceeds the due amount "+money.Format(inv.DueAmount))
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return settle(tx, inv)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) List(ctx context.Context, f PaymentFilter) (*pagination.Page[models.Payment], error) {
	q := s.db.WithContext(ctx).Model(&models.Payment{}).Scopes(models.NotDeleted)
	if f.InvoiceID != 0 {
		q = q.Where("invoice_id = ?", f.InvoiceID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.From != nil {
		q = q.Where("date_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date_time < ?", f.To.AddDate(0, 0, 1))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	payments := []models.Payment{}
	if err := q.Scopes(f.Params.Scope).Order("date_time DESC").Order("id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return &pagination.Page[models.Payment]{Data: payments, Pagination: f.Params.Meta(total)}, nil
}

func (s *PaymentService) Get(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := first(s.db.WithContext(ctx).Scopes(models.NotDeleted), &p, id, "payment"); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete soft-deletes a payment. The invoice balance is re-derived unless
// the invoice itself is already gone.
func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Payment
		if err := first(tx.Scopes(models.NotDeleted), &p, id, "payment"); err != nil {
			return err
		}
		if err := tx.Model(&p).Update("is_deleted", true).Error; err != nil {
			return err
		}
		inv, err := requireInvoice(tx, p.InvoiceID)
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return settle(tx, inv)
	})
}

type PaymentTypeStats struct {
	Type  models.PaymentType `json:"type"`
	Count int64              `json:"count"`
	Total float64            `json:"total"`
}

type PaymentStats struct {
	Count  int64              `json:"count"`
	Total  float64            `json:"total"`
	ByType []PaymentTypeStats `json:"byType"`
}

func (s *PaymentService) Stats(ctx context.Context) (*PaymentStats, error) {
	stats := &PaymentStats{ByType: []PaymentTypeStats{}}
	err := s.db.WithContext(ctx).Model(&models.Payment{}).Scopes(models.NotDeleted).
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("type").Order("type").
		Scan(&stats.ByType).Error
	if err != nil {
		return nil, err
	}
	for _, t := range stats.ByType {
		stats.Count += t.Count
		stats.Total += t.Total
	}
	stats.Total = money.Round2(stats.Total)
	return stats, nil
}

// settle writes the ledger-derived balance onto the invoice.
func settle(tx *gorm.DB, inv *models.Invoice) error {
	paid, err := paidTotal(tx, inv.ID)
	if err != nil {
		return err
	}
	paid = money.Round2(paid)
	due, err := billing.DueAmount(inv.Summary.GrandTotal, paid)
	if err != nil {
		return err
	}
	return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
		Updates(map[string]any{"paid_amount": paid, "due_amount": due}).Error
}
