package database

import (
	"context"
	"time"

	"go-print-erp/internal/models"

	"gorm.io/gorm"
)

// SalesReportResult is the revenue picture of a date range.
type SalesReportResult struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalPaid    float64 `json:"totalPaid"`
	TotalDue     float64 `json:"totalDue"`
	TotalCount   int64   `json:"totalCount"`
}

// GetSalesReport sums live, non-cancelled invoices issued within [start, end].
func GetSalesReport(ctx context.Context, db *gorm.DB, start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no invoices exist
	err := db.WithContext(ctx).Model(&models.Invoice{}).
		Scopes(models.NotDeleted).
		Where("issued_date BETWEEN ? AND ?", start, end).
		Where("status <> ?", models.InvoiceCancelled).
		Select("COALESCE(SUM(summary_grand_total), 0) AS total_revenue, " +
			"COALESCE(SUM(paid_amount), 0) AS total_paid, " +
			"COALESCE(SUM(due_amount), 0) AS total_due, " +
			"COUNT(*) AS total_count").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
