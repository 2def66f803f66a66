package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/billing"
	"go-print-erp/internal/logger"
	"go-print-erp/internal/metrics"
	"go-print-erp/internal/models"
	"go-print-erp/internal/money"
	"go-print-erp/internal/pagination"
	"go-print-erp/internal/workflow"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxNumberAttempts bounds how often a generated invoice number is
// regenerated after colliding with a concurrent insert.
const maxNumberAttempts = 3

// ItemInput is one requested line. Rate and BaseCost default to the
// product's price and base cost. ID is only used on invoice update to keep
// an existing line (and its tasks) instead of replacing it; a kept line
// with an unchanged product keeps its snapshot, rate and base cost.
type ItemInput struct {
	ID                   uint                 `json:"id"`
	ProductID            uint                 `json:"productId" binding:"required"`
	Quantity             float64              `json:"quantity" binding:"gt=0"`
	Rate                 *float64             `json:"rate" binding:"omitempty,gte=0"`
	BaseCost             *float64             `json:"baseCost" binding:"omitempty,gte=0"`
	DiscountType         billing.DiscountType `json:"discountType" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue        float64              `json:"discountValue" binding:"gte=0"`
	Priority             models.Priority      `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DeliveryDate         *time.Time           `json:"deliveryDate"`
	WorkInstructions     string               `json:"workInstructions"`
	PrintingInstructions string               `json:"printingInstructions"`
	Steps                models.Step          `json:"steps" binding:"omitempty,oneof=Draft Design Printing Pending Completed"`
	Allocation           string               `json:"allocation"`
	UserAllocation       string               `json:"userAllocation"`
}

type CreateInvoiceInput struct {
	InvoiceNumber string               `json:"invoiceNumber"`
	IssuedDate    *time.Time           `json:"issuedDate"`
	CustomerID    uint                 `json:"customerId" binding:"required"`
	From          *models.Seller       `json:"from"`
	Items         []ItemInput          `json:"items" binding:"required,min=1,dive"`
	RoundOffTotal bool                 `json:"roundOffTotal"`
	Status        models.InvoiceStatus `json:"status" binding:"omitempty,oneof=draft pending confirmed in_progress completed cancelled"`
	Notes         string               `json:"notes"`
}

// UpdateInvoiceInput carries only the fields being changed. A non-nil
// Items replaces the line list.
type UpdateInvoiceInput struct {
	CustomerID    *uint                 `json:"customerId"`
	IssuedDate    *time.Time            `json:"issuedDate"`
	From          *models.Seller        `json:"from"`
	Items         []ItemInput           `json:"items" binding:"omitempty,min=1,dive"`
	RoundOffTotal *bool                 `json:"roundOffTotal"`
	Status        *models.InvoiceStatus `json:"status" binding:"omitempty,oneof=draft pending confirmed in_progress completed cancelled"`
	Notes         *string               `json:"notes"`
}

// InvoiceFilter holds the filters of the invoice list.
type InvoiceFilter struct {
	pagination.Params
	Status     models.InvoiceStatus `form:"status" binding:"omitempty,oneof=draft pending confirmed in_progress completed cancelled"`
	CustomerID uint                 `form:"customerId"`
	From       *time.Time           `form:"from" time_format:"2006-01-02"`
	To         *time.Time           `form:"to" time_format:"2006-01-02"`
	Search     string               `form:"search"`
}

type InvoiceService struct {
	db      *gorm.DB
	seller  models.Seller
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
	next    func(tx *gorm.DB, year int) (string, error)
}

func NewInvoiceService(db *gorm.DB, seller models.Seller, m *metrics.Metrics) *InvoiceService {
	return &InvoiceService{
		db:      db,
		seller:  seller,
		metrics: m,
		log:     logger.WithComponent("invoice-service"),
		now:     time.Now,
		next:    NextInvoiceNumber,
	}
}

// Create validates the request, checks the customer and every product,
// allocates a number and stores the invoice with its items in one
// transaction.
func (s *InvoiceService) Create(ctx context.Context, actor auth.Principal, in CreateInvoiceInput) (*models.Invoice, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	explicit := strings.TrimSpace(in.InvoiceNumber)
	for attempt := 1; ; attempt++ {
		inv, err := s.createOnce(ctx, actor, in, explicit)
		if err == nil {
			s.metrics.InvoiceCreated()
			s.log.Info().Uint("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).Msg("Invoice created")
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if explicit != "" {
			return nil, apperr.Duplicate(fmt.Sprintf("invoice number %s already exists", explicit), err)
		}
		s.metrics.InvoiceNumberCollision()
		s.log.Warn().Int("attempt", attempt).Msg("Invoice number collision, regenerating")
		if attempt == maxNumberAttempts {
			return nil, apperr.Duplicate("could not allocate a unique invoice number", err)
		}
	}
}

func (s *InvoiceService) createOnce(ctx context.Context, actor auth.Principal, in CreateInvoiceInput, number string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := requireCustomer(tx, in.CustomerID)
		if err != nil {
			return err
		}
		items := make([]models.InvoiceItem, 0, len(in.Items))
		for i, it := range in.Items {
			item, err := buildItem(tx, it, i)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		if number == "" {
			number, err = s.next(tx, s.now().Year())
			if err != nil {
				return err
			}
		}

		inv = models.Invoice{
			InvoiceNumber: number,
			ActiveNumber:  &number,
			IssuedDate:    s.now(),
			Customer:      snapshotCustomer(customer),
			From:          s.seller,
			Status:        models.InvoiceDraft,
			Notes:         in.Notes,
			CreatedBy:     actor.ID,
		}
		if in.IssuedDate != nil {
			inv.IssuedDate = *in.IssuedDate
		}
		if in.From != nil {
			inv.From = *in.From
		}
		if in.Status != "" {
			inv.Status = in.Status
		}
		inv.Summary.RoundOffTotal = in.RoundOffTotal
		if err := recalculate(tx, &inv, items); err != nil {
			return err
		}
		inv.Items = items
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Scopes(models.NotDeleted).Preload("Items", liveItems).First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("invoice")
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByNumber finds a live invoice by its number.
func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Scopes(models.NotDeleted).Preload("Items", liveItems).
		Where("invoice_number = ?", number).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("invoice")
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) List(ctx context.Context, f InvoiceFilter) (*pagination.Page[models.Invoice], error) {
	q := s.db.WithContext(ctx).Model(&models.Invoice{}).Scopes(models.NotDeleted)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("issued_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("issued_date < ?", f.To.AddDate(0, 0, 1))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where("invoice_number LIKE ? OR customer_name LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	invoices := []models.Invoice{}
	err := q.Scopes(f.Params.Scope).
		Preload("Items", liveItems).
		Order("issued_date DESC").Order("id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return &pagination.Page[models.Invoice]{Data: invoices, Pagination: f.Params.Meta(total)}, nil
}

// Register returns the live invoices issued in [from, to] for export.
func (s *InvoiceService) Register(ctx context.Context, from, to time.Time) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := s.db.WithContext(ctx).Scopes(models.NotDeleted).
		Where("issued_date >= ? AND issued_date < ?", from, to.AddDate(0, 0, 1)).
		Order("issued_date ASC").Order("id ASC").
		Find(&invoices).Error
	return invoices, err
}

// Update applies a partial change. The customer is re-checked only when
// it actually changes; the summary and balance are always rebuilt.
func (s *InvoiceService) Update(ctx context.Context, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	if in.Items != nil {
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := requireInvoice(tx, id)
		if err != nil {
			return err
		}

		if in.CustomerID != nil && *in.CustomerID != inv.Customer.RefID {
			customer, err := requireCustomer(tx, *in.CustomerID)
			if err != nil {
				return err
			}
			inv.Customer = snapshotCustomer(customer)
		}
		if in.IssuedDate != nil {
			inv.IssuedDate = *in.IssuedDate
		}
		if in.From != nil {
			inv.From = *in.From
		}
		if in.RoundOffTotal != nil {
			inv.Summary.RoundOffTotal = *in.RoundOffTotal
		}
		if in.Status != nil {
			inv.Status = *in.Status
		}
		if in.Notes != nil {
			inv.Notes = *in.Notes
		}

		var items []models.InvoiceItem
		if in.Items != nil {
			items, err = replaceItems(tx, inv.ID, in.Items)
		} else {
			items, err = loadLiveItems(tx, inv.ID)
		}
		if err != nil {
			return err
		}

		if err := recalculate(tx, inv, items); err != nil {
			return err
		}
		if err := saveItems(tx, items); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the invoice and its items. The number is released
// so the generator may hand it out again.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := requireInvoice(tx, id)
		if err != nil {
			return err
		}
		err = tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Updates(map[string]any{"is_deleted": true, "active_number": nil}).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.InvoiceItem{}).
			Where("invoice_id = ? AND is_deleted = ?", inv.ID, false).
			Update("is_deleted", true).Error
	})
}

type InvoiceStatusStats struct {
	Status     models.InvoiceStatus `json:"status"`
	Count      int64                `json:"count"`
	GrandTotal float64              `json:"grandTotal"`
}

type InvoiceStats struct {
	TotalInvoices int64                `json:"totalInvoices"`
	GrandTotal    float64              `json:"grandTotal"`
	PaidAmount    float64              `json:"paidAmount"`
	DueAmount     float64              `json:"dueAmount"`
	ByStatus      []InvoiceStatusStats `json:"byStatus"`
}

func (s *InvoiceService) Stats(ctx context.Context) (*InvoiceStats, error) {
	db := s.db.WithContext(ctx)
	stats := &InvoiceStats{ByStatus: []InvoiceStatusStats{}}

	err := db.Model(&models.Invoice{}).Scopes(models.NotDeleted).
		Select("status, COUNT(*) AS count, COALESCE(SUM(summary_grand_total), 0) AS grand_total").
		Group("status").Order("status").
		Scan(&stats.ByStatus).Error
	if err != nil {
		return nil, err
	}

	var totals struct {
		Count int64
		Grand float64
		Paid  float64
		Due   float64
	}
	err = db.Model(&models.Invoice{}).Scopes(models.NotDeleted).
		Select("COUNT(*) AS count, COALESCE(SUM(summary_grand_total), 0) AS grand, " +
			"COALESCE(SUM(paid_amount), 0) AS paid, COALESCE(SUM(due_amount), 0) AS due").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalInvoices = totals.Count
	stats.GrandTotal = totals.Grand
	stats.PaidAmount = totals.Paid
	stats.DueAmount = totals.Due
	return stats, nil
}

func validateCreate(in CreateInvoiceInput) error {
	fields := apperr.FieldErrors{}
	if n := strings.TrimSpace(in.InvoiceNumber); n != "" && !ValidInvoiceNumber(n) {
		fields.Add("invoiceNumber", "invoiceNumber must look like INV-YYYY-NNNN")
	}
	if in.Status != "" && !in.Status.Valid() {
		fields.Add("status", "status is not a valid invoice status")
	}
	if len(in.Items) == 0 {
		fields.Add("items", "items must have at least 1 entries")
	}
	collectItemErrors(fields, in.Items)
	return fields.Err()
}

func validateItems(items []ItemInput) error {
	fields := apperr.FieldErrors{}
	if len(items) == 0 {
		fields.Add("items", "items must have at least 1 entries")
	}
	collectItemErrors(fields, items)
	return fields.Err()
}

func collectItemErrors(fields apperr.FieldErrors, items []ItemInput) {
	for i, it := range items {
		mergeFieldErrors(fields, fmt.Sprintf("items[%d].", i), validateItem(it))
	}
}

// validateItem checks the calculator preconditions of one line before any
// product lookup. A nil rate or base cost is checked once defaulted.
func validateItem(it ItemInput) error {
	in := itemLineInput(it, 0, 0)
	fields := apperr.FieldErrors{}
	if it.ProductID == 0 {
		fields.Add("productId", "productId is required")
	}
	if it.Priority != "" && !it.Priority.Valid() {
		fields.Add("priority", "priority must be one of [low medium high urgent]")
	}
	if it.Steps != "" && !it.Steps.Valid() {
		fields.Add("steps", "steps must be one of [Draft Design Printing Pending Completed]")
	}
	mergeFieldErrors(fields, "", in.Validate())
	return fields.Err()
}

func mergeFieldErrors(fields apperr.FieldErrors, prefix string, err error) {
	if err == nil {
		return
	}
	appErr := apperr.As(err)
	for k, v := range appErr.Details {
		fields.Add(prefix+k, v)
	}
}

func itemLineInput(it ItemInput, price, baseCost float64) billing.LineInput {
	in := billing.LineInput{
		Quantity:      it.Quantity,
		Rate:          price,
		DiscountType:  it.DiscountType,
		DiscountValue: it.DiscountValue,
		BaseCost:      baseCost,
	}
	if it.Rate != nil {
		in.Rate = *it.Rate
	}
	if it.BaseCost != nil {
		in.BaseCost = *it.BaseCost
	}
	if in.DiscountType == "" {
		in.DiscountType = billing.DiscountPercentage
	}
	return in
}

// buildItem checks the product and snapshots it onto a new line.
func buildItem(tx *gorm.DB, it ItemInput, position int) (models.InvoiceItem, error) {
	product, err := requireProduct(tx, it.ProductID)
	if err != nil {
		return models.InvoiceItem{}, err
	}
	line := itemLineInput(it, product.Price, product.BaseCost)
	item := models.InvoiceItem{
		Position:             position,
		Product:              snapshotProduct(product),
		Priority:             models.PriorityMedium,
		DeliveryDate:         it.DeliveryDate,
		Quantity:             line.Quantity,
		Rate:                 line.Rate,
		BaseCost:             line.BaseCost,
		DiscountType:         line.DiscountType,
		DiscountValue:        line.DiscountValue,
		WorkInstructions:     it.WorkInstructions,
		PrintingInstructions: it.PrintingInstructions,
		Steps:                models.StepDraft,
		Allocation:           it.Allocation,
		UserAllocation:       it.UserAllocation,
		OverallStatus:        workflow.ItemNotStarted,
	}
	if it.Priority != "" {
		item.Priority = it.Priority
	}
	if it.Steps != "" {
		item.Steps = it.Steps
	}
	return item, nil
}

// replaceItems turns the requested list into the invoice's new line set.
// Lines carrying the id of a live line are updated in place and keep
// their tracking state; the rest are new. Lines left out are soft-deleted.
func replaceItems(tx *gorm.DB, invoiceID uint, inputs []ItemInput) ([]models.InvoiceItem, error) {
	existing, err := loadLiveItems(tx, invoiceID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.InvoiceItem, len(existing))
	for _, it := range existing {
		byID[it.ID] = it
	}

	items := make([]models.InvoiceItem, 0, len(inputs))
	kept := make(map[uint]bool)
	for i, in := range inputs {
		old, ok := byID[in.ID]
		if in.ID == 0 || !ok {
			fresh, err := buildItem(tx, in, i)
			if err != nil {
				return nil, err
			}
			fresh.InvoiceID = invoiceID
			items = append(items, fresh)
			continue
		}
		if kept[in.ID] {
			return nil, apperr.Field(fmt.Sprintf("items[%d].id", i), "item listed more than once")
		}
		kept[in.ID] = true

		// The product snapshot is only re-taken when the line points at a
		// different product.
		price, baseCost := old.Rate, old.BaseCost
		if in.ProductID != old.Product.RefID {
			product, err := requireProduct(tx, in.ProductID)
			if err != nil {
				return nil, err
			}
			old.Product = snapshotProduct(product)
			price, baseCost = product.Price, product.BaseCost
		}
		if in.DiscountType == "" {
			in.DiscountType = old.DiscountType
		}
		line := itemLineInput(in, price, baseCost)

		old.Position = i
		old.Quantity = line.Quantity
		old.Rate = line.Rate
		old.BaseCost = line.BaseCost
		old.DiscountType = line.DiscountType
		old.DiscountValue = line.DiscountValue
		old.DeliveryDate = in.DeliveryDate
		old.WorkInstructions = in.WorkInstructions
		old.PrintingInstructions = in.PrintingInstructions
		old.Allocation = in.Allocation
		old.UserAllocation = in.UserAllocation
		if in.Priority != "" {
			old.Priority = in.Priority
		}
		if in.Steps != "" {
			old.Steps = in.Steps
		}
		items = append(items, old)
	}

	var dropped []uint
	for _, it := range existing {
		if !kept[it.ID] {
			dropped = append(dropped, it.ID)
		}
	}
	if len(dropped) > 0 {
		err := tx.Model(&models.InvoiceItem{}).Where("id IN ?", dropped).Update("is_deleted", true).Error
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

// recalculate rebuilds every line, the summary, and the balance against
// the payment ledger. It fails when the new grand total falls below what
// has already been paid.
func recalculate(tx *gorm.DB, inv *models.Invoice, items []models.InvoiceItem) error {
	lines := make([]billing.LineResult, 0, len(items))
	for i := range items {
		r := billing.CalculateLine(items[i].LineInput())
		items[i].ApplyLine(r)
		lines = append(lines, r)
	}
	inv.ApplySummary(billing.Summarize(lines, inv.Summary.RoundOffTotal))

	paid, err := paidTotal(tx, inv.ID)
	if err != nil {
		return err
	}
	due, err := billing.DueAmount(inv.Summary.GrandTotal, paid)
	if err != nil {
		return err
	}
	inv.PaidAmount = paid
	inv.DueAmount = due
	return nil
}

// refreshInvoice recomputes a stored invoice from its live items.
func refreshInvoice(tx *gorm.DB, invoiceID uint) error {
	inv, err := requireInvoice(tx, invoiceID)
	if err != nil {
		return err
	}
	items, err := loadLiveItems(tx, invoiceID)
	if err != nil {
		return err
	}
	if err := recalculate(tx, inv, items); err != nil {
		return err
	}
	if err := saveItems(tx, items); err != nil {
		return err
	}
	return tx.Omit(clause.Associations).Save(inv).Error
}

func paidTotal(tx *gorm.DB, invoiceID uint) (float64, error) {
	if invoiceID == 0 {
		return 0, nil
	}
	var total float64
	err := tx.Model(&models.Payment{}).Scopes(models.NotDeleted).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return money.Round2(total), err
}

func loadLiveItems(tx *gorm.DB, invoiceID uint) ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	err := tx.Scopes(models.NotDeleted).Where("invoice_id = ?", invoiceID).
		Order("position ASC").Order("id ASC").Find(&items).Error
	return items, err
}

func saveItems(tx *gorm.DB, items []models.InvoiceItem) error {
	for i := range items {
		if err := tx.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func liveItems(db *gorm.DB) *gorm.DB {
	return db.Scopes(models.NotDeleted).Order("position ASC").Order("id ASC")
}

func snapshotCustomer(c *models.Customer) models.CustomerSnapshot {
	return models.CustomerSnapshot{RefID: c.ID, Name: c.Name, Phone: c.Phone}
}

func snapshotProduct(p *models.Product) models.ProductSnapshot {
	return models.ProductSnapshot{RefID: p.ID, Name: p.Name, Price: p.Price, BaseCost: p.BaseCost}
}
