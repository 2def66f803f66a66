package services

import (
	"time"

	"go-print-erp/internal/models"
	"go-print-erp/internal/money"
)

// FormattedItem and FormattedInvoice are the display view of an invoice:
// amounts become currency strings with exactly two fraction digits.
type FormattedItem struct {
	ID             uint   `json:"id"`
	ProductName    string `json:"productName"`
	Quantity       string `json:"quantity"`
	Rate           string `json:"rate"`
	DiscountType   string `json:"discountType"`
	DiscountAmount string `json:"discountAmount"`
	Total          string `json:"total"`
	Steps          string `json:"steps"`
	OverallStatus  string `json:"overallStatus"`
	TaskProgress   int    `json:"taskProgress"`
}

type FormattedInvoice struct {
	ID            uint                    `json:"id"`
	InvoiceNumber string                  `json:"invoiceNumber"`
	IssuedDate    string                  `json:"issuedDate"`
	Customer      models.CustomerSnapshot `json:"customer"`
	From          models.Seller           `json:"from"`
	Status        string                  `json:"status"`
	Items         []FormattedItem         `json:"items"`
	Subtotal      string                  `json:"subtotal"`
	TotalDiscount string                  `json:"totalDiscount"`
	GrandTotal    string                  `json:"grandTotal"`
	PaidAmount    string                  `json:"paidAmount"`
	DueAmount     string                  `json:"dueAmount"`
}

func FormatInvoice(inv *models.Invoice) FormattedInvoice {
	out := FormattedInvoice{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		IssuedDate:    inv.IssuedDate.Format(time.DateOnly),
		Customer:      inv.Customer,
		From:          inv.From,
		Status:        string(inv.Status),
		Items:         make([]FormattedItem, 0, len(inv.Items)),
		Subtotal:      money.Format(inv.Summary.Subtotal),
		TotalDiscount: money.Format(inv.Summary.TotalDiscount),
		GrandTotal:    money.Format(inv.Summary.GrandTotal),
		PaidAmount:    money.Format(inv.PaidAmount),
		DueAmount:     money.Format(inv.DueAmount),
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, FormattedItem{
			ID:             it.ID,
			ProductName:    it.Product.Name,
			Quantity:       money.FormatQuantity(it.Quantity),
			Rate:           money.Format(it.Rate),
			DiscountType:   string(it.DiscountType),
			DiscountAmount: money.Format(it.DiscountAmount),
			Total:          money.Format(it.Total),
			Steps:          string(it.Steps),
			OverallStatus:  string(it.OverallStatus),
			TaskProgress:   it.TaskProgress,
		})
	}
	return out
}
