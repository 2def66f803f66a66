package handlers

import (
	"net/http"

	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoices *services.InvoiceService
}

func NewInvoiceHandler(invoices *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var in services.CreateInvoiceInput
	if !bindJSON(c, &in) {
		return
	}
	inv, err := h.invoices.Create(c.Request.Context(), actor, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	var f services.InvoiceFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.invoices.List(c.Request.Context(), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns the invoice with its live items. ?view=formatted renders
// amounts as currency strings.
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if c.Query("view") == "formatted" {
		c.JSON(http.StatusOK, services.FormatInvoice(inv))
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	inv, err := h.invoices.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.UpdateInvoiceInput
	if !bindJSON(c, &in) {
		return
	}
	inv, err := h.invoices.Update(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "invoice deleted"})
}

func (h *InvoiceHandler) Stats(c *gin.Context) {
	stats, err := h.invoices.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
