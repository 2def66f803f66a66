package models

import "time"

type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCheque PaymentType = "cheque"
	PaymentUPI    PaymentType = "UPI"
)

// Payment - one receipt of money against an invoice. The invoice's
// paidAmount is the sum of its live payments.
type Payment struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Type       PaymentType `gorm:"size:10;not null;index" json:"type"`
	InvoiceID  uint        `gorm:"not null;index" json:"invoiceId"`
	DateTime   time.Time   `gorm:"not null;index" json:"dateTime"`
	Amount     float64     `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reference  string      `gorm:"size:100" json:"reference,omitempty"`
	Notes      string      `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy uint        `json:"recordedBy"`
	IsDeleted  bool        `gorm:"not null;index" json:"isDeleted"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
