package services

import (
	"context"
	"errors"
	"strings"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/models"
	"go-print-erp/internal/pagination"

	"gorm.io/gorm"
)

type UserInput struct {
	Username string      `json:"username" binding:"required,min=3"`
	Password string      `json:"password" binding:"required,min=6"`
	Name     string      `json:"name"`
	Email    string      `json:"email" binding:"omitempty,email"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role" binding:"required,oneof=admin manager employee"`
	IsActive *bool       `json:"isActive"`
}

type UserUpdateInput struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Phone    *string      `json:"phone"`
	Role     *models.Role `json:"role" binding:"omitempty,oneof=admin manager employee"`
	IsActive *bool        `json:"isActive"`
	Password *string      `json:"password" binding:"omitempty,min=6"`
}

type UserFilter struct {
	pagination.Params
	Role     models.Role `form:"role" binding:"omitempty,oneof=admin manager employee"`
	IsActive *bool       `form:"isActive"`
	Search   string      `form:"search"`
}

// UserService manages login accounts; employees are users too.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate checks credentials. Unknown users, wrong passwords and
// deactivated accounts all get the same answer.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, apperr.Field("role", "role must be one of [admin manager employee]")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	u := models.User{
		Username:     strings.TrimSpace(in.Username),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, duplicateUsername(err)
	}
	return &u, nil
}

func (s *UserService) List(ctx context.Context, f UserFilter) (*pagination.Page[models.User], error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where("username LIKE ? OR name LIKE ? OR email LIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := q.Scopes(f.Params.Scope).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return &pagination.Page[models.User]{Data: users, Pagination: f.Params.Meta(total)}, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := first(s.db.WithContext(ctx), &u, id, "user"); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserUpdateInput) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperr.Field("role", "role must be one of [admin manager employee]")
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, duplicateUsername(err)
	}
	return u, nil
}

// Delete removes the account for good. Tasks keep the id they were
// assigned to.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func duplicateUsername(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Duplicate("username already taken", err)
	}
	return err
}
