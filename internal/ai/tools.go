package ai

import (
	"context"
	"fmt"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/database"
	"go-print-erp/internal/models"
	"go-print-erp/internal/services"

	"github.com/google/generative-ai-go/genai"
	"gorm.io/gorm"
)

const (
	toolInvoiceStats  = "get_invoice_stats"
	toolFindInvoice   = "find_invoice"
	toolItemProgress  = "get_item_progress"
	toolSalesReport   = "get_sales_report"
	toolDateLayout    = "2006-01-02"
	unknownToolStatus = "unknown tool"
)

type InvoiceReader interface {
	Stats(ctx context.Context) (*services.InvoiceStats, error)
	GetByNumber(ctx context.Context, number string) (*models.Invoice, error)
}

type ItemReader interface {
	Get(ctx context.Context, id uint) (*models.InvoiceItem, error)
}

// Toolbox executes the functions the assistant may call. Every tool is
// read-only.
type Toolbox struct {
	db       *gorm.DB
	invoices InvoiceReader
	items    ItemReader
}

func NewToolbox(db *gorm.DB, invoices InvoiceReader, items ItemReader) *Toolbox {
	return &Toolbox{db: db, invoices: invoices, items: items}
}

// Declarations describes the tools to the model.
func (t *Toolbox) Declarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        toolInvoiceStats,
				Description: "Get invoice counts and totals per status, plus overall grand, paid and due amounts.",
			},
			{
				Name:        toolFindInvoice,
				Description: "Look up one invoice by its number (e.g. INV-2024-0008), including its items.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"invoice_number": {Type: genai.TypeString, Description: "Invoice number"},
					},
					Required: []string{"invoice_number"},
				},
			},
			{
				Name:        toolItemProgress,
				Description: "Get the production status and task progress of one invoice item by its ID.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"item_id": {Type: genai.TypeInteger, Description: "ID of the invoice item"},
					},
					Required: []string{"item_id"},
				},
			},
			{
				Name:        toolSalesReport,
				Description: "Get invoiced revenue, paid and due totals for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
		},
	}}
}

// Call runs one tool. Lookup failures the model can recover from, such
// as an unknown invoice number, are reported in the result rather than
// returned as errors.
func (t *Toolbox) Call(ctx context.Context, call genai.FunctionCall) (map[string]any, error) {
	switch call.Name {
	case toolInvoiceStats:
		stats, err := t.invoices.Stats(ctx)
		if err != nil {
			return nil, err
		}
		byStatus := make(map[string]any, len(stats.ByStatus))
		for _, s := range stats.ByStatus {
			byStatus[string(s.Status)] = map[string]any{"count": s.Count, "grand_total": s.GrandTotal}
		}
		return map[string]any{
			"total_invoices": stats.TotalInvoices,
			"grand_total":    stats.GrandTotal,
			"paid_amount":    stats.PaidAmount,
			"due_amount":     stats.DueAmount,
			"by_status":      byStatus,
		}, nil

	case toolFindInvoice:
		number, _ := call.Args["invoice_number"].(string)
		inv, err := t.invoices.GetByNumber(ctx, number)
		if apperr.Is(err, apperr.KindNotFound) {
			return map[string]any{"status": "not found", "invoice_number": number}, nil
		}
		if err != nil {
			return nil, err
		}
		items := make([]map[string]any, 0, len(inv.Items))
		for _, it := range inv.Items {
			items = append(items, map[string]any{
				"item_id":        it.ID,
				"product":        it.Product.Name,
				"quantity":       it.Quantity,
				"total":          it.Total,
				"overall_status": string(it.OverallStatus),
				"task_progress":  it.TaskProgress,
			})
		}
		return map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"issued_date":    inv.IssuedDate.Format(toolDateLayout),
			"customer":       inv.Customer.Name,
			"status":         string(inv.Status),
			"grand_total":    inv.Summary.GrandTotal,
			"paid_amount":    inv.PaidAmount,
			"due_amount":     inv.DueAmount,
			"items":          items,
		}, nil

	case toolItemProgress:
		id, ok := call.Args["item_id"].(float64)
		if !ok || id < 1 {
			return map[string]any{"status": "item_id must be a positive integer"}, nil
		}
		item, err := t.items.Get(ctx, uint(id))
		if apperr.Is(err, apperr.KindNotFound) {
			return map[string]any{"status": "not found", "item_id": uint(id)}, nil
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"item_id":        item.ID,
			"invoice_id":     item.InvoiceID,
			"product":        item.Product.Name,
			"steps":          string(item.Steps),
			"overall_status": string(item.OverallStatus),
			"task_progress":  item.TaskProgress,
		}, nil

	case toolSalesReport:
		startStr, _ := call.Args["start_date"].(string)
		endStr, _ := call.Args["end_date"].(string)
		start, err1 := time.Parse(toolDateLayout, startStr)
		end, err2 := time.Parse(toolDateLayout, endStr)
		if err1 != nil || err2 != nil {
			return map[string]any{"status": "dates must be in YYYY-MM-DD format"}, nil
		}
		end = end.Add(24*time.Hour - time.Nanosecond)

		report, err := database.GetSalesReport(ctx, t.db, start, end)
		if err != nil {
			return nil, fmt.Errorf("sales report: %w", err)
		}
		return map[string]any{
			"revenue":       report.TotalRevenue,
			"paid":          report.TotalPaid,
			"due":           report.TotalDue,
			"invoice_count": report.TotalCount,
		}, nil
	}
	return map[string]any{"status": unknownToolStatus, "name": call.Name}, nil
}
