package services

import (
	"context"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/billing"
	"go-print-erp/internal/models"
	"go-print-erp/internal/pagination"
	"go-print-erp/internal/workflow"

	"gorm.io/gorm"
)

// ItemFilter holds the filters of the item tracking list.
type ItemFilter struct {
	pagination.Params
	InvoiceID     uint                `form:"invoiceId"`
	OverallStatus workflow.ItemStatus `form:"overallStatus" binding:"omitempty,oneof='Not Started' 'In Progress' 'On Hold' Completed"`
	Steps         models.Step         `form:"steps" binding:"omitempty,oneof=Draft Design Printing Pending Completed"`
	Priority      models.Priority     `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// TrackingInput holds the workflow fields of an item. The derived
// overallStatus and taskProgress are not part of it, so a client cannot
// set them.
type TrackingInput struct {
	Steps                *models.Step     `json:"steps" binding:"omitempty,oneof=Draft Design Printing Pending Completed"`
	Allocation           *string          `json:"allocation"`
	UserAllocation       *string          `json:"userAllocation"`
	Priority             *models.Priority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DeliveryDate         *time.Time       `json:"deliveryDate"`
	WorkInstructions     *string          `json:"workInstructions"`
	PrintingInstructions *string          `json:"printingInstructions"`
}

// ItemUpdateInput changes the commercial side of one line.
type ItemUpdateInput struct {
	ProductID     *uint                 `json:"productId"`
	Quantity      *float64              `json:"quantity" binding:"omitempty,gt=0"`
	Rate          *float64              `json:"rate" binding:"omitempty,gte=0"`
	BaseCost      *float64              `json:"baseCost" binding:"omitempty,gte=0"`
	DiscountType  *billing.DiscountType `json:"discountType" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue *float64              `json:"discountValue" binding:"omitempty,gte=0"`
}

type ItemService struct {
	db *gorm.DB
}

func NewItemService(db *gorm.DB) *ItemService {
	return &ItemService{db: db}
}

// ListByInvoice returns the live lines of a live invoice in order.
func (s *ItemService) ListByInvoice(ctx context.Context, invoiceID uint) ([]models.InvoiceItem, error) {
	db := s.db.WithContext(ctx)
	if _, err := requireInvoice(db, invoiceID); err != nil {
		return nil, err
	}
	return loadLiveItems(db, invoiceID)
}

func (s *ItemService) List(ctx context.Context, f ItemFilter) (*pagination.Page[models.InvoiceItem], error) {
	q := s.db.WithContext(ctx).Model(&models.InvoiceItem{}).Scopes(models.NotDeleted)
	if f.InvoiceID != 0 {
		q = q.Where("invoice_id = ?", f.InvoiceID)
	}
	if f.OverallStatus != "" {
		q = q.Where("overall_status = ?", f.OverallStatus)
	}
	if f.Steps != "" {
		q = q.Where("steps = ?", f.Steps)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	items := []models.InvoiceItem{}
	if err := q.Scopes(f.Params.Scope).Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return &pagination.Page[models.InvoiceItem]{Data: items, Pagination: f.Params.Meta(total)}, nil
}

func (s *ItemService) Get(ctx context.Context, id uint) (*models.InvoiceItem, error) {
	return requireItem(s.db.WithContext(ctx), id)
}

// UpdateTracking changes workflow fields only; totals are unaffected.
func (s *ItemService) UpdateTracking(ctx context.Context, id uint, in TrackingInput) (*models.InvoiceItem, error) {
	db := s.db.WithContext(ctx)
	item, err := requireItem(db, id)
	if err != nil {
		return nil, err
	}

	fields := apperr.FieldErrors{}
	if in.Steps != nil {
		if !in.Steps.Valid() {
			fields.Add("steps", "steps must be one of [Draft Design Printing Pending Completed]")
		}
		item.Steps = *in.Steps
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			fields.Add("priority", "priority must be one of [low medium high urgent]")
		}
		item.Priority = *in.Priority
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	if in.Allocation != nil {
		item.Allocation = *in.Allocation
	}
	if in.UserAllocation != nil {
		item.UserAllocation = *in.UserAllocation
	}
	if in.DeliveryDate != nil {
		item.DeliveryDate = in.DeliveryDate
	}
	if in.WorkInstructions != nil {
		item.WorkInstructions = *in.WorkInstructions
	}
	if in.PrintingInstructions != nil {
		item.PrintingInstructions = *in.PrintingInstructions
	}

	if err := db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Add appends a line to an existing invoice and rebuilds its summary.
func (s *ItemService) Add(ctx context.Context, invoiceID uint, in ItemInput) (*models.InvoiceItem, error) {
	if err := validateItem(in); err != nil {
		return nil, err
	}

	var item models.InvoiceItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireInvoice(tx, invoiceID); err != nil {
			return err
		}
		var position int
		err := tx.Model(&models.InvoiceItem{}).Scopes(models.NotDeleted).
			Where("invoice_id = ?", invoiceID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&position).Error
		if err != nil {
			return err
		}

		item, err = buildItem(tx, in, position)
		if err != nil {
			return err
		}
		item.InvoiceID = invoiceID
		item.ApplyLine(billing.CalculateLine(item.LineInput()))
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return refreshInvoice(tx, invoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, item.ID)
}

// Update changes the commercial fields of a line; the product is
// re-checked only when it changes.
func (s *ItemService) Update(ctx context.Context, id uint, in ItemUpdateInput) (*models.InvoiceItem, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := requireItem(tx, id)
		if err != nil {
			return err
		}

		if in.ProductID != nil && *in.ProductID != item.Product.RefID {
			product, err := requireProduct(tx, *in.ProductID)
			if err != nil {
				return err
			}
			item.Product = snapshotProduct(product)
			if in.Rate == nil {
				item.Rate = product.Price
			}
			if in.BaseCost == nil {
				item.BaseCost = product.BaseCost
			}
		}
		if in.Quantity != nil {
			item.Quantity = *in.Quantity
		}
		if in.Rate != nil {
			item.Rate = *in.Rate
		}
		if in.BaseCost != nil {
			item.BaseCost = *in.BaseCost
		}
		if in.DiscountType != nil {
			item.DiscountType = *in.DiscountType
		}
		if in.DiscountValue != nil {
			item.DiscountValue = *in.DiscountValue
		}

		line := item.LineInput()
		if err := line.Validate(); err != nil {
			return err
		}
		item.ApplyLine(billing.CalculateLine(line))
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return refreshInvoice(tx, item.InvoiceID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a line and rebuilds the invoice summary.
func (s *ItemService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := requireItem(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(item).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return refreshInvoice(tx, item.InvoiceID)
	})
}
