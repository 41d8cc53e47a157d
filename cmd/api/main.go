package main

import (
	"os"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/envelope"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/ratelimit"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// throttledClasses lists the mutation classes subject to the per-actor
// fixed-window limit. Approval and payment flows are the sensitive ones.
var throttledClasses = []string{
	model.EntityVendorInvoice + ":" + model.ActionApproveInvoice,
	model.EntityVendorInvoice + ":" + model.ActionPayInvoice,
	model.EntityRequisition + ":" + model.ActionApproveRequisition,
	model.EntityPaymentRequest + ":" + model.ActionApprovePaymentRequest,
	model.EntityLedgerEntry + ":" + model.ActionReversePosting,
}

// @title           Procurement & Finance Ledger API
// @version         1.0
// @description     Multi-location procurement lifecycle, double-entry ledger and stock ledger with full audit tracing.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.WithError(err).Fatal("Database connection failed")
	}
	log.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	itemRepo := repository.NewItemRepository(db)
	stockRepo := repository.NewStockMovementRepository(db)
	requisitionRepo := repository.NewRequisitionRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	receiptRepo := repository.NewGoodsReceiptRepository(db)
	invoiceRepo := repository.NewVendorInvoiceRepository(db)
	payReqRepo := repository.NewPaymentRequestRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Mutation envelope: audit verification, throttling, event publishing
	limiter := ratelimit.NewDefault()
	env := envelope.New(auditRepo, limiter, log, throttledClasses, wsHub)

	// Services
	userService := service.NewUserService(userRepo)
	financeService := service.NewFinanceService(ledgerRepo, invoiceRepo, receiptRepo, orderRepo, payReqRepo, expenseRepo, saleRepo, auditRepo, txManager, env)
	procurementService := service.NewProcurementService(requisitionRepo, orderRepo, receiptRepo, invoiceRepo, payReqRepo, stockRepo, itemRepo, auditRepo, txManager, env)
	inventoryService := service.NewInventoryService(stockRepo, itemRepo, auditRepo, txManager, env)
	auditService := service.NewAuditService(auditRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(userService)
	financeHandler := handler.NewFinanceHandler(financeService)
	procurementHandler := handler.NewProcurementHandler(procurementService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	financeHandler.RegisterRoutes(router.Group(""))
	procurementHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")
	log.WithField("port", port).Info("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
