package models

import "time"

type Address struct {
	Line1      string `gorm:"size:255" json:"line1,omitempty"`
	Line2      string `gorm:"size:255" json:"line2,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	State      string `gorm:"size:100" json:"state,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`
	PostalCode string `gorm:"size:20" json:"postalCode,omitempty"`
}

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;index" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Company   string    `gorm:"size:150" json:"company,omitempty"`
	Address   Address   `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	IsDeleted bool      `gorm:"not null;index" json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
