package services

import (
	"errors"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/models"

	"gorm.io/gorm"
)

// The require* helpers fetch a referenced entity and fail with NotFound
// when it is missing or soft-deleted. They run before any write.

func requireCustomer(tx *gorm.DB, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := first(tx.Scopes(models.NotDeleted), &c, id, "customer"); err != nil {
		return nil, err
	}
	return &c, nil
}

func requireProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := first(tx.Scopes(models.NotDeleted), &p, id, "product"); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireInvoice(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := first(tx.Scopes(models.NotDeleted), &inv, id, "invoice"); err != nil {
		return nil, err
	}
	return &inv, nil
}

func requireItem(tx *gorm.DB, id uint) (*models.InvoiceItem, error) {
	var it models.InvoiceItem
	if err := first(tx.Scopes(models.NotDeleted), &it, id, "invoice item"); err != nil {
		return nil, err
	}
	return &it, nil
}

func requireTask(tx *gorm.DB, id uint) (*models.TaskAssignment, error) {
	var t models.TaskAssignment
	if err := first(tx.Scopes(models.NotDeleted), &t, id, "task"); err != nil {
		return nil, err
	}
	return &t, nil
}

// requireEmployee also rejects deactivated accounts.
func requireEmployee(tx *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := first(tx.Where("is_active = ?", true), &u, id, "employee"); err != nil {
		return nil, err
	}
	return &u, nil
}

func first(tx *gorm.DB, dest any, id uint, entity string) error {
	if id == 0 {
		return apperr.NotFound(entity)
	}
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return err
}
