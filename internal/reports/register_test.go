package reports

import (
	"bytes"
	"testing"
	"time"

	"go-print-erp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleInvoices() []models.Invoice {
	issued := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	return []models.Invoice{
		{
			InvoiceNumber: "INV-2024-0001",
			IssuedDate:    issued,
			Customer:      models.CustomerSnapshot{Name: "Asha Traders", Phone: "9800000001"},
			Status:        models.InvoicePending,
			Summary:       models.InvoiceSummary{Subtotal: 200, TotalDiscount: 20, GrandTotal: 180},
			PaidAmount:    80,
			DueAmount:     100,
		},
		{
			InvoiceNumber: "INV-2024-0002",
			IssuedDate:    issued.AddDate(0, 0, 1),
			Customer:      models.CustomerSnapshot{Name: "Metro Books"},
			Status:        models.InvoiceDraft,
			Summary:       models.InvoiceSummary{Subtotal: 50, GrandTotal: 50},
			DueAmount:     50,
		},
		{
			InvoiceNumber: "INV-2024-0003",
			IssuedDate:    issued.AddDate(0, 0, 2),
			Customer:      models.CustomerSnapshot{Name: "Asha Traders"},
			Status:        models.InvoicePending,
			Summary:       models.InvoiceSummary{Subtotal: 20, GrandTotal: 20},
			PaidAmount:    20,
		},
	}
}

func TestWriteInvoiceRegister(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoiceRegister(&buf, sampleInvoices()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{InvoiceSheet, SummarySheet}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis, raw)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Invoice Number", cell(InvoiceSheet, "A1"))
	assert.Equal(t, "INV-2024-0001", cell(InvoiceSheet, "A2"))
	assert.Equal(t, "2024-06-15", cell(InvoiceSheet, "B2"))
	assert.Equal(t, "Asha Traders", cell(InvoiceSheet, "C2"))
	assert.Equal(t, "pending", cell(InvoiceSheet, "E2"))
	assert.Equal(t, "180", cell(InvoiceSheet, "H2"))

	assert.Equal(t, "Total", cell(InvoiceSheet, "A5"))
	assert.Equal(t, "270", cell(InvoiceSheet, "F5"))
	assert.Equal(t, "250", cell(InvoiceSheet, "H5"))
	assert.Equal(t, "100", cell(InvoiceSheet, "I5"))
	assert.Equal(t, "150", cell(InvoiceSheet, "J5"))

	assert.Equal(t, "draft", cell(SummarySheet, "A2"))
	assert.Equal(t, "1", cell(SummarySheet, "B2"))
	assert.Equal(t, "pending", cell(SummarySheet, "A3"))
	assert.Equal(t, "2", cell(SummarySheet, "B3"))
	assert.Equal(t, "200", cell(SummarySheet, "C3"))
	assert.Equal(t, "100", cell(SummarySheet, "D3"))
}

func TestWriteInvoiceRegisterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoiceRegister(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(InvoiceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][0])
}

func TestGroupByStatus(t *testing.T) {
	groups := GroupByStatus(sampleInvoices())
	require.Len(t, groups, 2)
	assert.Equal(t, models.InvoiceDraft, groups[0].Status)
	assert.Equal(t, models.InvoicePending, groups[1].Status)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, "200", groups[1].GrandTotal.String())
}
