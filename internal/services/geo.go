package services

import (
	"context"
	"strings"

	"go-print-erp/internal/models"

	"gorm.io/gorm"
)

// GeoService serves the seeded reference geography.
type GeoService struct {
	db *gorm.DB
}

func NewGeoService(db *gorm.DB) *GeoService {
	return &GeoService{db: db}
}

func (s *GeoService) Countries(ctx context.Context, search string) ([]models.Country, error) {
	countries := []models.Country{}
	err := byName(s.db.WithContext(ctx), search).Find(&countries).Error
	return countries, err
}

func (s *GeoService) States(ctx context.Context, countryID uint, search string) ([]models.State, error) {
	q := byName(s.db.WithContext(ctx), search)
	if countryID != 0 {
		q = q.Where("country_id = ?", countryID)
	}
	states := []models.State{}
	err := q.Find(&states).Error
	return states, err
}

func (s *GeoService) Cities(ctx context.Context, stateID uint, search string) ([]models.City, error) {
	q := byName(s.db.WithContext(ctx), search)
	if stateID != 0 {
		q = q.Where("state_id = ?", stateID)
	}
	cities := []models.City{}
	err := q.Find(&cities).Error
	return cities, err
}

func byName(db *gorm.DB, search string) *gorm.DB {
	q := db.Order("name ASC")
	if term := strings.TrimSpace(search); term != "" {
		q = q.Where("name LIKE ?", "%"+term+"%")
	}
	return q
}
