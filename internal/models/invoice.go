package models

import (
	"time"

	"go-print-erp/internal/billing"
	"go-print-erp/internal/workflow"
)

type InvoiceStatus string

const (
	InvoiceDraft      InvoiceStatus = "draft"
	InvoicePending    InvoiceStatus = "pending"
	InvoiceConfirmed  InvoiceStatus = "confirmed"
	InvoiceInProgress InvoiceStatus = "in_progress"
	InvoiceCompleted  InvoiceStatus = "completed"
	InvoiceCancelled  InvoiceStatus = "cancelled"
)

var InvoiceStatuses = []InvoiceStatus{
	InvoiceDraft, InvoicePending, InvoiceConfirmed, InvoiceInProgress, InvoiceCompleted, InvoiceCancelled,
}

func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CustomerSnapshot is copied from the customer when the invoice is
// written and is not refreshed afterwards.
type CustomerSnapshot struct {
	RefID uint   `gorm:"column:id;index" json:"id"`
	Name  string `gorm:"size:150" json:"name"`
	Phone string `gorm:"size:30" json:"phone"`
}

// Seller is the business issuing the invoice.
type Seller struct {
	Name    string `gorm:"size:150" json:"name"`
	Address string `gorm:"size:500" json:"address,omitempty"`
	Phone   string `gorm:"size:30" json:"phone,omitempty"`
	GSTIN   string `gorm:"size:20" json:"gstin,omitempty"`
}

type InvoiceSummary struct {
	Subtotal      float64 `gorm:"type:decimal(14,2)" json:"subtotal"`
	TotalDiscount float64 `gorm:"type:decimal(14,2)" json:"totalDiscount"`
	GrandTotal    float64 `gorm:"type:decimal(14,2)" json:"grandTotal"`
	RoundOffTotal bool    `json:"roundOffTotal"`
	TotalProfit   float64 `gorm:"type:decimal(14,2)" json:"totalProfit"`
}

type Invoice struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	InvoiceNumber string `gorm:"size:32;not null;index" json:"invoiceNumber"`
	// ActiveNumber mirrors InvoiceNumber while the invoice is live and is
	// cleared on soft delete, so the unique index only binds live invoices.
	ActiveNumber *string          `gorm:"size:32;uniqueIndex" json:"-"`
	IssuedDate   time.Time        `gorm:"not null;index" json:"issuedDate"`
	Customer     CustomerSnapshot `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	From         Seller           `gorm:"embedded;embeddedPrefix:from_" json:"from"`
	Items        []InvoiceItem    `gorm:"foreignKey:InvoiceID" json:"items"`
	Summary      InvoiceSummary   `gorm:"embedded;embeddedPrefix:summary_" json:"summary"`
	Status       InvoiceStatus    `gorm:"size:20;not null;index" json:"status"`
	PaidAmount   float64          `gorm:"type:decimal(14,2)" json:"paidAmount"`
	DueAmount    float64          `gorm:"type:decimal(14,2)" json:"dueAmount"`
	Notes        string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy    uint             `json:"createdBy"`
	IsDeleted    bool             `gorm:"not null;index" json:"isDeleted"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// ProductSnapshot is copied from the catalog when the line is written.
type ProductSnapshot struct {
	RefID    uint    `gorm:"column:id;index" json:"id"`
	Name     string  `gorm:"size:150" json:"name"`
	Price    float64 `gorm:"type:decimal(12,2)" json:"price"`
	BaseCost float64 `gorm:"type:decimal(12,2)" json:"baseCost"`
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Step is the production stage an item is in.
type Step string

const (
	StepDraft     Step = "Draft"
	StepDesign    Step = "Design"
	StepPrinting  Step = "Printing"
	StepPending   Step = "Pending"
	StepCompleted Step = "Completed"
)

func (s Step) Valid() bool {
	switch s {
	case StepDraft, StepDesign, StepPrinting, StepPending, StepCompleted:
		return true
	}
	return false
}

// InvoiceItem - one line of an invoice. Items are owned by their invoice
// but have their own ids so tasks can be assigned against them.
type InvoiceItem struct {
	ID                   uint                 `gorm:"primaryKey" json:"id"`
	InvoiceID            uint                 `gorm:"not null;index" json:"invoiceId"`
	Position             int                  `json:"position"`
	Product              ProductSnapshot      `gorm:"embedded;embeddedPrefix:product_" json:"product"`
	Priority             Priority             `gorm:"size:10" json:"priority"`
	DeliveryDate         *time.Time           `json:"deliveryDate,omitempty"`
	Quantity             float64              `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Rate                 float64              `gorm:"type:decimal(12,2);not null" json:"rate"`
	BaseCost             float64              `gorm:"type:decimal(12,2)" json:"baseCost"`
	DiscountType         billing.DiscountType `gorm:"size:12;not null" json:"discountType"`
	DiscountValue        float64              `gorm:"type:decimal(12,2)" json:"discountValue"`
	DiscountAmount       float64              `gorm:"type:decimal(12,2)" json:"discountAmount"`
	Total                float64              `gorm:"type:decimal(14,2)" json:"total"`
	Profit               float64              `gorm:"type:decimal(14,2)" json:"profit"`
	WorkInstructions     string               `gorm:"type:text" json:"workInstructions,omitempty"`
	PrintingInstructions string               `gorm:"type:text" json:"printingInstructions,omitempty"`
	Steps                Step                 `gorm:"size:20" json:"steps"`
	Allocation           string               `gorm:"size:150" json:"allocation,omitempty"`
	UserAllocation       string               `gorm:"size:150" json:"userAllocation,omitempty"`
	OverallStatus        workflow.ItemStatus  `gorm:"size:20;index" json:"overallStatus"`
	TaskProgress         int                  `json:"taskProgress"`
	IsDeleted            bool                 `gorm:"not null;index" json:"isDeleted"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// LineInput returns the calculator input of the item.
func (it *InvoiceItem) LineInput() billing.LineInput {
	return billing.LineInput{
		Quantity:      it.Quantity,
		Rate:          it.Rate,
		DiscountType:  it.DiscountType,
		DiscountValue: it.DiscountValue,
		BaseCost:      it.BaseCost,
	}
}

// ApplyLine copies computed values onto the item.
func (it *InvoiceItem) ApplyLine(r billing.LineResult) {
	it.Quantity = r.Quantity
	it.DiscountAmount = r.DiscountAmount
	it.Total = r.Total
	it.Profit = r.Profit
}

// ApplySummary copies a computed summary onto the invoice.
func (inv *Invoice) ApplySummary(s billing.Summary) {
	inv.Summary = InvoiceSummary{
		Subtotal:      s.Subtotal,
		TotalDiscount: s.TotalDiscount,
		GrandTotal:    s.GrandTotal,
		RoundOffTotal: s.RoundOffTotal,
		TotalProfit:   s.TotalProfit,
	}
}
