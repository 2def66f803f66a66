package services

import (
	"testing"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/database"
	"go-print-erp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerLifecycle(t *testing.T) {
	f := newFixture(t)

	c, err := f.customers.Create(f.ctx, CustomerInput{Name: " Metro Books ", Email: "Metro@Example.com", Company: "Metro"})
	require.NoError(t, err)
	assert.Equal(t, "Metro Books", c.Name)
	assert.Equal(t, "metro@example.com", c.Email)

	_, err = f.customers.Create(f.ctx, CustomerInput{Name: "Copy", Email: "metro@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))

	_, err = f.customers.Update(f.ctx, c.ID, CustomerUpdateInput{Email: ptr("asha@example.com")})
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))

	updated, err := f.customers.Update(f.ctx, c.ID, CustomerUpdateInput{Phone: ptr("12345")})
	require.NoError(t, err)
	assert.Equal(t, "12345", updated.Phone)

	page, err := f.customers.List(f.ctx, CustomerFilter{Search: "metro"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	require.NoError(t, f.customers.Delete(f.ctx, c.ID))
	_, err = f.customers.Get(f.ctx, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	page, err = f.customers.List(f.ctx, CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)

	_, err := f.products.Create(f.ctx, ProductInput{Name: "Flyer", Type: models.ProductTypeProduct, Code: "FL-1", TaxRate: 7})
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Details, "taxRate")

	p, err := f.products.Create(f.ctx, ProductInput{Name: "Design work", Type: models.ProductTypeService, Code: "DS-1", TaxRate: 18, Price: 500, Unit: "hour"})
	require.NoError(t, err)

	_, err = f.products.Create(f.ctx, ProductInput{Name: "Other", Type: models.ProductTypeService, Code: "DS-1", TaxRate: 0})
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))

	withPhoto, err := f.products.SetPhoto(f.ctx, p.ID, "http://localhost:8080/uploads/design.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/design.png", withPhoto.PhotoURL)

	page, err := f.products.List(f.ctx, ProductFilter{Type: models.ProductTypeService})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, p.ID, page.Data[0].ID)

	require.NoError(t, f.products.Delete(f.ctx, p.ID))
	_, err = f.products.Get(f.ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Create(f.ctx, UserInput{Username: "meena", Password: "secret1", Role: models.RoleEmployee})
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	_, err = f.users.Create(f.ctx, UserInput{Username: "meena", Password: "secret1", Role: models.RoleEmployee})
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))

	got, err := f.users.Authenticate(f.ctx, "meena", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(f.ctx, "meena", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = f.users.Update(f.ctx, u.ID, UserUpdateInput{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = f.users.Authenticate(f.ctx, "meena", "secret1")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	page, err := f.users.List(f.ctx, UserFilter{Role: models.RoleEmployee, IsActive: ptr(true)})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	require.NoError(t, f.users.Delete(f.ctx, u.ID))
	assert.True(t, apperr.Is(f.users.Delete(f.ctx, u.ID), apperr.KindNotFound))
	var count int64
	f.db.Model(&models.User{}).Where("id = ?", u.ID).Count(&count)
	assert.Zero(t, count)
}

func TestGeoLookups(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, database.SeedGeography(f.ctx, f.db))
	geo := NewGeoService(f.db)

	countries, err := geo.Countries(f.ctx, "ind")
	require.NoError(t, err)
	require.Len(t, countries, 1)
	assert.Equal(t, "IN", countries[0].ISO2)

	states, err := geo.States(f.ctx, countries[0].ID, "")
	require.NoError(t, err)
	assert.Len(t, states, 5)
	assert.Equal(t, "Delhi", states[0].Name)

	cities, err := geo.Cities(f.ctx, 0, "lalit")
	require.NoError(t, err)
	require.Len(t, cities, 1)
	assert.Equal(t, "Lalitpur", cities[0].Name)
}
