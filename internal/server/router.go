// Package server wires services and handlers into the gin engine.
package server

import (
	"time"

	"go-print-erp/internal/ai"
	"go-print-erp/internal/auth"
	"go-print-erp/internal/config"
	"go-print-erp/internal/handlers"
	"go-print-erp/internal/logger"
	"go-print-erp/internal/metrics"
	"go-print-erp/internal/middleware"
	"go-print-erp/internal/models"
	"go-print-erp/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Metrics    *metrics.Metrics
	InstanceID string
	Version    string
}

// NewRouter builds the HTTP surface. Everything under /api needs a
// bearer token; writes that change money or people need admin or manager.
func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()
	cfg := d.Config
	log := logger.WithComponent("router")
	seller := models.Seller{Name: cfg.Seller.Name, Address: cfg.Seller.Address, Phone: cfg.Seller.Phone, GSTIN: cfg.Seller.GSTIN}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	invoiceSvc := services.NewInvoiceService(d.DB, seller, d.Metrics)
	itemSvc := services.NewItemService(d.DB)
	userSvc := services.NewUserService(d.DB)
	propagator := services.NewStatusPropagator(d.DB, d.Metrics)

	authH := handlers.NewAuthHandler(userSvc, tokens)
	users := handlers.NewUserHandler(userSvc)
	customers := handlers.NewCustomerHandler(services.NewCustomerService(d.DB))
	products := handlers.NewProductHandler(services.NewProductService(d.DB), cfg.UploadDir, cfg.BaseURL)
	invoices := handlers.NewInvoiceHandler(invoiceSvc)
	items := handlers.NewItemHandler(itemSvc)
	payments := handlers.NewPaymentHandler(services.NewPaymentService(d.DB))
	tasks := handlers.NewTaskHandler(services.NewTaskService(d.DB, propagator))
	geo := handlers.NewGeoHandler(services.NewGeoService(d.DB))
	reportsH := handlers.NewReportHandler(d.DB, invoiceSvc)
	assistant := handlers.NewAIHandler(ai.NewAgent(cfg.GeminiAPIKey, ai.NewToolbox(d.DB, invoiceSvc, itemSvc)))
	system := handlers.NewSystemHandler(d.DB, d.InstanceID, d.Version, seller)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog())
	r.Use(d.Metrics.Middleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", system.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	r.Static("/uploads", cfg.UploadDir)

	public := r.Group("/api")
	public.POST("/login", authH.Login)
	if cfg.AllowRegistration {
		public.POST("/register", authH.Register)
		log.Warn().Msg("Registration route is OPEN. Disable this in production!")
	} else {
		log.Info().Msg("Registration route is disabled")
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))
	{
		// every signed-in role
		api.GET("/customers", customers.List)
		api.GET("/customers/:id", customers.Get)
		api.GET("/products", products.List)
		api.GET("/products/:id", products.Get)

		api.GET("/invoices", invoices.List)
		api.GET("/invoices/stats", invoices.Stats)
		api.GET("/invoices/number/:number", invoices.GetByNumber)
		api.GET("/invoices/:id", invoices.Get)
		api.GET("/invoices/:id/items", items.ListByInvoice)

		api.GET("/items", items.List)
		api.GET("/items/:id", items.Get)
		api.PATCH("/items/:id/tracking", items.UpdateTracking)

		// the task service checks who may assign, edit or delete
		api.GET("/tasks", tasks.List)
		api.GET("/tasks/stats", tasks.Stats)
		api.GET("/tasks/:id", tasks.Get)
		api.POST("/tasks", tasks.Create)
		api.PUT("/tasks/:id", tasks.Update)
		api.PATCH("/tasks/:id/status", tasks.UpdateStatus)
		api.DELETE("/tasks/:id", tasks.Delete)

		api.GET("/geo/countries", geo.Countries)
		api.GET("/geo/states", geo.States)
		api.GET("/geo/cities", geo.Cities)

		manage := api.Group("/")
		manage.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
		{
			manage.POST("/customers", customers.Create)
			manage.PUT("/customers/:id", customers.Update)
			manage.DELETE("/customers/:id", customers.Delete)

			manage.POST("/products", products.Create)
			manage.PUT("/products/:id", products.Update)
			manage.DELETE("/products/:id", products.Delete)
			manage.POST("/products/:id/photo", products.UploadPhoto)

			manage.POST("/invoices", invoices.Create)
			manage.PUT("/invoices/:id", invoices.Update)
			manage.DELETE("/invoices/:id", invoices.Delete)
			manage.POST("/invoices/:id/items", items.Add)
			manage.PUT("/items/:id", items.Update)
			manage.DELETE("/items/:id", items.Delete)

			manage.POST("/payments", payments.Create)
			manage.GET("/payments", payments.List)
			manage.GET("/payments/stats", payments.Stats)
			manage.GET("/payments/:id", payments.Get)
			manage.DELETE("/payments/:id", payments.Delete)

			manage.GET("/reports/sales", reportsH.Sales)
			manage.GET("/reports/invoices/export", reportsH.ExportInvoices)
		}

		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/users", users.Create)
			admin.GET("/users", users.List)
			admin.GET("/users/:id", users.Get)
			admin.PUT("/users/:id", users.Update)
			admin.DELETE("/users/:id", users.Delete)

			admin.POST("/ask", assistant.Ask)
			admin.GET("/system/status", system.Status)
		}
	}

	return r
}
