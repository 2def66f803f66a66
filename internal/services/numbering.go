package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go-print-erp/internal/models"

	"gorm.io/gorm"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d{4})-(\d{4,})$`)

func invoiceNumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

func formatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// ValidInvoiceNumber reports whether s has the INV-{year}-{seq} shape.
func ValidInvoiceNumber(s string) bool {
	return invoiceNumberPattern.MatchString(s)
}

// NextInvoiceNumber reads the highest live number of the year and returns
// the one after it. The read and the later insert are not atomic; callers
// retry on a duplicate key.
func NextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	prefix := invoiceNumberPrefix(year)

	var last models.Invoice
	err := tx.Model(&models.Invoice{}).
		Scopes(models.NotDeleted).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("LENGTH(invoice_number) DESC").
		Order("invoice_number DESC").
		Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return formatInvoiceNumber(year, 1), nil
	}
	if err != nil {
		return "", err
	}

	seq, err := strconv.Atoi(strings.TrimPrefix(last.InvoiceNumber, prefix))
	if err != nil {
		return "", fmt.Errorf("parse invoice number %q: %w", last.InvoiceNumber, err)
	}
	return formatInvoiceNumber(year, seq+1), nil
}
