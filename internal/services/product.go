package services

import (
	"context"
	"errors"
	"strings"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/models"
	"go-print-erp/internal/pagination"

	"gorm.io/gorm"
)

type ProductInput struct {
	Name        string             `json:"name" binding:"required"`
	Type        models.ProductType `json:"type" binding:"required,oneof=product service"`
	Unit        string             `json:"unit"`
	TaxRate     float64            `json:"taxRate"`
	Code        string             `json:"code" binding:"required"`
	HSN         string             `json:"hsn"`
	Price       float64            `json:"price" binding:"gte=0"`
	BaseCost    float64            `json:"baseCost" binding:"gte=0"`
	PhotoURL    string             `json:"photoUrl"`
	Description string             `json:"description"`
}

type ProductUpdateInput struct {
	Name        *string             `json:"name"`
	Type        *models.ProductType `json:"type" binding:"omitempty,oneof=product service"`
	Unit        *string             `json:"unit"`
	TaxRate     *float64            `json:"taxRate"`
	Code        *string             `json:"code"`
	HSN         *string             `json:"hsn"`
	Price       *float64            `json:"price" binding:"omitempty,gte=0"`
	BaseCost    *float64            `json:"baseCost" binding:"omitempty,gte=0"`
	PhotoURL    *string             `json:"photoUrl"`
	Description *string             `json:"description"`
}

type ProductFilter struct {
	pagination.Params
	Search string             `form:"search"`
	Type   models.ProductType `form:"type" binding:"omitempty,oneof=product service"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Unit:        in.Unit,
		TaxRate:     in.TaxRate,
		Code:        strings.TrimSpace(in.Code),
		HSN:         in.HSN,
		Price:       in.Price,
		BaseCost:    in.BaseCost,
		PhotoURL:    in.PhotoURL,
		Description: in.Description,
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, duplicateCode(err)
	}
	return &p, nil
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) (*pagination.Page[models.Product], error) {
	q := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(models.NotDeleted)
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR code LIKE ? OR hsn LIKE ?", like, like, like)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := q.Scopes(f.Params.Scope).Order("name ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return &pagination.Page[models.Product]{Data: products, Pagination: f.Params.Meta(total)}, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return requireProduct(s.db.WithContext(ctx), id)
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductUpdateInput) (*models.Product, error) {
	db := s.db.WithContext(ctx)
	p, err := requireProduct(db, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if in.TaxRate != nil {
		p.TaxRate = *in.TaxRate
	}
	if in.Code != nil {
		p.Code = strings.TrimSpace(*in.Code)
	}
	if in.HSN != nil {
		p.HSN = *in.HSN
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.BaseCost != nil {
		p.BaseCost = *in.BaseCost
	}
	if in.PhotoURL != nil {
		p.PhotoURL = *in.PhotoURL
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := db.Save(p).Error; err != nil {
		return nil, duplicateCode(err)
	}
	return p, nil
}

// SetPhoto stores the URL of an uploaded product photo.
func (s *ProductService) SetPhoto(ctx context.Context, id uint, url string) (*models.Product, error) {
	return s.Update(ctx, id, ProductUpdateInput{PhotoURL: &url})
}

// Delete soft-deletes the product. Lines that reference it keep their
// snapshot.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	p, err := requireProduct(db, id)
	if err != nil {
		return err
	}
	return db.Model(p).Update("is_deleted", true).Error
}

func validateProduct(p *models.Product) error {
	fields := apperr.FieldErrors{}
	if p.Name == "" {
		fields.Add("name", "name is required")
	}
	if p.Code == "" {
		fields.Add("code", "code is required")
	}
	if p.Type != models.ProductTypeProduct && p.Type != models.ProductTypeService {
		fields.Add("type", "type must be one of [product service]")
	}
	if !models.ValidTaxRate(p.TaxRate) {
		fields.Add("taxRate", "taxRate must be one of [0 5 12 18 28]")
	}
	if p.Price < 0 {
		fields.Add("price", "price must be at least 0")
	}
	if p.BaseCost < 0 {
		fields.Add("baseCost", "baseCost must be at least 0")
	}
	return fields.Err()
}

func duplicateCode(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Duplicate("a product with this code already exists", err)
	}
	return err
}
