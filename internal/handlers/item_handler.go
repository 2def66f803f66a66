package handlers

import (
	"net/http"

	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	items *services.ItemService
}

func NewItemHandler(items *services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// GET /invoices/:id/items
func (h *ItemHandler) ListByInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.items.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// POST /invoices/:id/items
func (h *ItemHandler) Add(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.ItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.items.Add(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) List(c *gin.Context) {
	var f services.ItemFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.items.List(c.Request.Context(), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// PATCH /items/:id/tracking
func (h *ItemHandler) UpdateTracking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.TrackingInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.items.UpdateTracking(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.ItemUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.items.Update(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "invoice item deleted"})
}
