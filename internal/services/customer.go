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

type CustomerInput struct {
	Name    string         `json:"name" binding:"required"`
	Email   string         `json:"email" binding:"required,email"`
	Phone   string         `json:"phone"`
	Company string         `json:"company"`
	Address models.Address `json:"address"`
}

type CustomerUpdateInput struct {
	Name    *string         `json:"name"`
	Email   *string         `json:"email" binding:"omitempty,email"`
	Phone   *string         `json:"phone"`
	Company *string         `json:"company"`
	Address *models.Address `json:"address"`
}

type CustomerFilter struct {
	pagination.Params
	Search string `form:"search"`
}

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	c := models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   in.Phone,
		Company: in.Company,
		Address: in.Address,
	}
	if c.Name == "" {
		return nil, apperr.Field("name", "name is required")
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, duplicateEmail(err)
	}
	return &c, nil
}

func (s *CustomerService) List(ctx context.Context, f CustomerFilter) (*pagination.Page[models.Customer], error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{}).Scopes(models.NotDeleted)
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR phone LIKE ? OR company LIKE ?", like, like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	customers := []models.Customer{}
	if err := q.Scopes(f.Params.Scope).Order("name ASC").Order("id ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return &pagination.Page[models.Customer]{Data: customers, Pagination: f.Params.Meta(total)}, nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	return requireCustomer(s.db.WithContext(ctx), id)
}

// Update changes the customer record. Invoices keep the snapshot they
// were written with.
func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerUpdateInput) (*models.Customer, error) {
	db := s.db.WithContext(ctx)
	c, err := requireCustomer(db, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Field("name", "name is required")
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Company != nil {
		c.Company = *in.Company
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if err := db.Save(c).Error; err != nil {
		return nil, duplicateEmail(err)
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	db := s.db.WithContext(ctx)
	c, err := requireCustomer(db, id)
	if err != nil {
		return err
	}
	return db.Model(c).Update("is_deleted", true).Error
}

func duplicateEmail(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Duplicate("a customer with this email already exists", err)
	}
	return err
}
