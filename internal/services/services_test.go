package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-print-erp/internal/auth"
	"go-print-erp/internal/billing"
	"go-print-erp/internal/database"
	"go-print-erp/internal/metrics"
	"go-print-erp/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx        context.Context
	db         *gorm.DB
	metrics    *metrics.Metrics
	invoices   *InvoiceService
	items      *ItemService
	payments   *PaymentService
	tasks      *TaskService
	propagator *StatusPropagator
	customers  *CustomerService
	products   *ProductService
	users      *UserService

	customer *models.Customer
	product  *models.Product
	admin    auth.Principal
	manager  auth.Principal
	employee auth.Principal
	other    auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	m := metrics.New()
	clock := func() time.Time { return testNow }

	f := &fixture{
		ctx:        context.Background(),
		db:         db,
		metrics:    m,
		invoices:   NewInvoiceService(db, models.Seller{Name: "Print Shop"}, m),
		items:      NewItemService(db),
		payments:   NewPaymentService(db),
		propagator: NewStatusPropagator(db, m),
		customers:  NewCustomerService(db),
		products:   NewProductService(db),
		users:      NewUserService(db),
	}
	f.invoices.now = clock
	f.payments.now = clock
	f.tasks = NewTaskService(db, f.propagator)
	f.tasks.now = clock

	f.customer = &models.Customer{Name: "Asha Traders", Email: "asha@example.com", Phone: "9800000001"}
	require.NoError(t, db.Create(f.customer).Error)
	f.product = &models.Product{Name: "Visiting Card", Type: models.ProductTypeProduct, Code: "VC-01", TaxRate: 18, Price: 100, BaseCost: 40}
	require.NoError(t, db.Create(f.product).Error)

	f.admin = f.user(t, "admin", models.RoleAdmin, true)
	f.manager = f.user(t, "manager", models.RoleManager, true)
	f.employee = f.user(t, "ravi", models.RoleEmployee, true)
	f.other = f.user(t, "sita", models.RoleEmployee, true)
	return f
}

func (f *fixture) user(t *testing.T, username string, role models.Role, active bool) auth.Principal {
	t.Helper()
	u := models.User{Username: username, Name: username, Role: role, IsActive: active}
	require.NoError(t, f.db.Create(&u).Error)
	return auth.Principal{ID: u.ID, Role: role}
}

func (f *fixture) createInvoice(t *testing.T, items ...ItemInput) *models.Invoice {
	t.Helper()
	if len(items) == 0 {
		items = []ItemInput{lineOf(f.product.ID, 2, 100, billing.DiscountPercentage, 10)}
	}
	inv, err := f.invoices.Create(f.ctx, f.admin, CreateInvoiceInput{CustomerID: f.customer.ID, Items: items})
	require.NoError(t, err)
	return inv
}

func lineOf(productID uint, qty, rate float64, dt billing.DiscountType, dv float64) ItemInput {
	return ItemInput{ProductID: productID, Quantity: qty, Rate: &rate, DiscountType: dt, DiscountValue: dv}
}

func ptr[T any](v T) *T {
	return &v
}

// scrape returns the text exposition of the fixture's metrics.
func (f *fixture) scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}
