// Package reports renders spreadsheet exports.
package reports

import (
	"fmt"
	"io"
	"sort"

	"go-print-erp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	InvoiceSheet = "Invoices"
	SummarySheet = "Summary"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var registerHeader = []any{
	"Invoice Number", "Issued Date", "Customer", "Phone", "Status",
	"Subtotal", "Discount", "Grand Total", "Paid", "Due",
}

// StatusGroup is one row of the summary sheet.
type StatusGroup struct {
	Status     models.InvoiceStatus
	Count      int
	GrandTotal decimal.Decimal
	Due        decimal.Decimal
}

// WriteInvoiceRegister writes an xlsx workbook with one row per invoice,
// a totals row and a per-status summary sheet.
func WriteInvoiceRegister(w io.Writer, invoices []models.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InvoiceSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(InvoiceSheet, "A1", &registerHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(InvoiceSheet, "A1", "J1", bold); err != nil {
		return err
	}

	var subtotal, discount, grand, paid, due decimal.Decimal
	for i, inv := range invoices {
		row := []any{
			inv.InvoiceNumber,
			inv.IssuedDate.Format("2006-01-02"),
			inv.Customer.Name,
			inv.Customer.Phone,
			string(inv.Status),
			inv.Summary.Subtotal,
			inv.Summary.TotalDiscount,
			inv.Summary.GrandTotal,
			inv.PaidAmount,
			inv.DueAmount,
		}
		if err := setRow(f, InvoiceSheet, i+2, row); err != nil {
			return err
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(inv.Summary.Subtotal))
		discount = discount.Add(decimal.NewFromFloat(inv.Summary.TotalDiscount))
		grand = grand.Add(decimal.NewFromFloat(inv.Summary.GrandTotal))
		paid = paid.Add(decimal.NewFromFloat(inv.PaidAmount))
		due = due.Add(decimal.NewFromFloat(inv.DueAmount))
	}

	last := len(invoices) + 2
	totals := []any{"Total", "", "", "", "", asFloat(subtotal), asFloat(discount), asFloat(grand), asFloat(paid), asFloat(due)}
	if err := setRow(f, InvoiceSheet, last, totals); err != nil {
		return err
	}
	if err := styleRange(f, InvoiceSheet, "A", last, "J", last, bold); err != nil {
		return err
	}
	if err := styleRange(f, InvoiceSheet, "F", 2, "J", last, amount); err != nil {
		return err
	}
	if err := f.SetColWidth(InvoiceSheet, "A", "J", 16); err != nil {
		return err
	}

	if err := writeSummary(f, GroupByStatus(invoices), bold); err != nil {
		return err
	}
	return f.Write(w)
}

// GroupByStatus totals invoices per status in the order statuses are
// declared. Statuses with no invoices are left out.
func GroupByStatus(invoices []models.Invoice) []StatusGroup {
	groups := make(map[models.InvoiceStatus]*StatusGroup)
	for _, inv := range invoices {
		g, ok := groups[inv.Status]
		if !ok {
			g = &StatusGroup{Status: inv.Status}
			groups[inv.Status] = g
		}
		g.Count++
		g.GrandTotal = g.GrandTotal.Add(decimal.NewFromFloat(inv.Summary.GrandTotal))
		g.Due = g.Due.Add(decimal.NewFromFloat(inv.DueAmount))
	}

	out := make([]StatusGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		return statusRank(out[i].Status) < statusRank(out[j].Status)
	})
	return out
}

func writeSummary(f *excelize.File, groups []StatusGroup, bold int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	header := []any{"Status", "Invoices", "Grand Total", "Due"}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "D1", bold); err != nil {
		return err
	}
	for i, g := range groups {
		row := []any{string(g.Status), g.Count, asFloat(g.GrandTotal), asFloat(g.Due)}
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "D", 16)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRange(f *excelize.File, sheet, fromCol string, fromRow int, toCol string, toRow int, style int) error {
	return f.SetCellStyle(sheet, fmt.Sprintf("%s%d", fromCol, fromRow), fmt.Sprintf("%s%d", toCol, toRow), style)
}

func asFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func statusRank(s models.InvoiceStatus) int {
	for i, v := range models.InvoiceStatuses {
		if v == s {
			return i
		}
	}
	return len(models.InvoiceStatuses)
}
