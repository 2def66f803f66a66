package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/database"
	"go-print-erp/internal/reports"
	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportRange is an inclusive range of issue dates.
type ReportRange struct {
	From *time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   *time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

type ReportHandler struct {
	db       *gorm.DB
	invoices *services.InvoiceService
}

func NewReportHandler(db *gorm.DB, invoices *services.InvoiceService) *ReportHandler {
	return &ReportHandler{db: db, invoices: invoices}
}

func (h *ReportHandler) bindRange(c *gin.Context) (from, to time.Time, ok bool) {
	var r ReportRange
	if !bindQuery(c, &r) {
		return from, to, false
	}
	if r.To.Before(*r.From) {
		abortWithError(c, apperr.Field("to", "to must not be before from"))
		return from, to, false
	}
	return *r.From, *r.To, true
}

// GET /reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	from, to, ok := h.bindRange(c)
	if !ok {
		return
	}
	report, err := database.GetSalesReport(c.Request.Context(), h.db, from, to.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /reports/invoices/export streams the invoice register as xlsx.
func (h *ReportHandler) ExportInvoices(c *gin.Context) {
	from, to, ok := h.bindRange(c)
	if !ok {
		return
	}
	invoices, err := h.invoices.Register(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteInvoiceRegister(&buf, invoices); err != nil {
		abortWithError(c, apperr.Internal("failed to build spreadsheet", err))
		return
	}

	filename := fmt.Sprintf("invoices-%s-%s.xlsx", from.Format("2006-01-02"), to.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, reports.ContentType, buf.Bytes())
}
