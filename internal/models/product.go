package models

import "time"

type ProductType string

const (
	ProductTypeProduct ProductType = "product"
	ProductTypeService ProductType = "service"
)

// TaxRates are the GST slabs a product may carry.
var TaxRates = []float64{0, 5, 12, 18, 28}

func ValidTaxRate(rate float64) bool {
	for _, r := range TaxRates {
		if r == rate {
			return true
		}
	}
	return false
}

// Product - a catalog entry, either a physical product or a service.
type Product struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:150;not null;index" json:"name"`
	Type        ProductType `gorm:"size:20;not null" json:"type"`
	Unit        string      `gorm:"size:30" json:"unit"`
	TaxRate     float64     `gorm:"not null" json:"taxRate"`
	Code        string      `gorm:"size:50;not null;uniqueIndex" json:"code"`
	HSN         string      `gorm:"size:20" json:"hsn,omitempty"`
	Price       float64     `gorm:"type:decimal(12,2);not null" json:"price"`
	BaseCost    float64     `gorm:"type:decimal(12,2);not null" json:"baseCost"`
	PhotoURL    string      `gorm:"size:500" json:"photoUrl,omitempty"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	IsDeleted   bool        `gorm:"not null;index" json:"isDeleted"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
