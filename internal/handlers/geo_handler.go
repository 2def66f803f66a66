package handlers

import (
	"net/http"

	"go-print-erp/internal/services"

	"github.com/gin-gonic/gin"
)

type geoQuery struct {
	Search    string `form:"search"`
	CountryID uint   `form:"countryId"`
	StateID   uint   `form:"stateId"`
}

type GeoHandler struct {
	geo *services.GeoService
}

func NewGeoHandler(geo *services.GeoService) *GeoHandler {
	return &GeoHandler{geo: geo}
}

func (h *GeoHandler) Countries(c *gin.Context) {
	var q geoQuery
	if !bindQuery(c, &q) {
		return
	}
	countries, err := h.geo.Countries(c.Request.Context(), q.Search)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

// GET /geo/states?countryId=
func (h *GeoHandler) States(c *gin.Context) {
	var q geoQuery
	if !bindQuery(c, &q) {
		return
	}
	states, err := h.geo.States(c.Request.Context(), q.CountryID, q.Search)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

// GET /geo/cities?stateId=
func (h *GeoHandler) Cities(c *gin.Context) {
	var q geoQuery
	if !bindQuery(c, &q) {
		return
	}
	cities, err := h.geo.Cities(c.Request.Context(), q.StateID, q.Search)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}
