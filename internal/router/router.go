package router

import (
	"time"

	"github.com/YousofDev/Invoice-Tracker/internal/config"
	"github.com/YousofDev/Invoice-Tracker/internal/handler"
	"github.com/YousofDev/Invoice-Tracker/internal/middleware"
	"github.com/YousofDev/Invoice-Tracker/internal/repository"
	"github.com/YousofDev/Invoice-Tracker/internal/service"
	"github.com/YousofDev/Invoice-Tracker/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	itemRepo := repository.NewItemRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	clientSvc := service.NewClientService(clientRepo)
	itemSvc := service.NewItemService(itemRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, clientRepo, itemRepo, dispatcher, cfg.DefaultCurrency)
	paymentSvc := service.NewPaymentService(paymentRepo, invoiceRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	itemsH := handler.NewItemsHandler(itemSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/profile", authH.Profile)

		clients := v1.Group("/clients")
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
			clients.PUT("/:id", clientsH.Update)
			clients.DELETE("/:id", clientsH.Delete)
		}

		items := v1.Group("/items")
		{
			items.POST("", itemsH.Create)
			items.GET("", itemsH.List)
			items.GET("/:id", itemsH.Get)
			items.PUT("/:id", itemsH.Update)
			items.DELETE("/:id", itemsH.Delete)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoicesH.Create)
			invoices.GET("", invoicesH.List)
			invoices.GET("/:id", invoicesH.Get)
			invoices.PUT("/:id", invoicesH.Update)
			invoices.DELETE("/:id", invoicesH.Delete)
			invoices.POST("/:id/send", invoicesH.Send)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentsH.Record)
			payments.GET("", paymentsH.List)
			payments.GET("/:id", paymentsH.Get)
			payments.PUT("/:id", paymentsH.Update)
			payments.DELETE("/:id", paymentsH.Delete)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
