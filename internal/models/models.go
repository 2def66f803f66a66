package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

// CanManage reports whether the role may assign, reassign and delete work.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

// User - an account that can log in. Employees that tasks are assigned to
// are users too. Users are the one entity that is hard-deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Name         string    `gorm:"size:120" json:"name"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	Phone        string    `gorm:"size:30" json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `gorm:"size:20;not null" json:"role"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NotDeleted is the default scope of every soft-deletable read.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Customer{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
		&Payment{},
		&TaskAssignment{},
		&Country{},
		&State{},
		&City{},
	}
}
