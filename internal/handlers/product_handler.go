package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
)

var photoExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type ProductHandler struct {
	products  *services.ProductService
	uploadDir string
	baseURL   string
	now       func() time.Time
}

func NewProductHandler(products *services.ProductService, uploadDir, baseURL string) *ProductHandler {
	return &ProductHandler{
		products:  products,
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.products.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	var f services.ProductFilter
	if !bindQuery(c, &f) {
		return
	}
	page, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.ProductUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.products.Update(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "product deleted"})
}

// UploadPhoto stores the multipart "file" under the upload directory and
// sets the product's photoUrl to where it is served.
func (h *ProductHandler) UploadPhoto(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	// make sure the product exists before touching the disk
	if _, err := h.products.Get(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, apperr.Field("file", "no file uploaded"))
		return
	}
	name := filepath.Base(file.Filename)
	if !photoExtensions[strings.ToLower(filepath.Ext(name))] {
		abortWithError(c, apperr.Field("file", "file must be a jpg, png, webp or gif image"))
		return
	}

	// e.g. "1718445600_7_card.png"
	filename := fmt.Sprintf("%d_%d_%s", h.now().Unix(), id, strings.ReplaceAll(name, " ", "_"))
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		abortWithError(c, apperr.Internal("failed to prepare upload directory", err))
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		abortWithError(c, apperr.Internal("failed to save file", err))
		return
	}

	p, err := h.products.SetPhoto(c.Request.Context(), id, h.baseURL+"/uploads/"+filename)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
