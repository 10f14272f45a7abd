package FiberConfig

import (
	"Quarry/Config"
	"Quarry/Controllers"
	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the routes need.
type Deps struct {
	DB        *gorm.DB
	Memo      *Ledger.Memo
	Integrity Controllers.IntegrityRunner
}

func SetupRoutes(app *fiber.App, cfg *Config.AppConfig, deps Deps) {
	vendorController := Controllers.NewVendorController(deps.DB, deps.Memo)
	paymentController := Controllers.NewPaymentController(deps.DB)
	balanceController := Controllers.NewBalanceController(deps.DB, deps.Memo)
	analyticsController := Controllers.NewAnalyticsController(deps.DB, balanceController)
	logController := Controllers.NewRequestLogController(cfg.RequestLogFile)

	read := middleware.Verify(cfg.JWTSecret, middleware.PermissionRead)
	write := middleware.Verify(cfg.JWTSecret, middleware.PermissionWrite)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group
	api := app.Group("/api")

	// Literal vendor routes must be registered before /:type.
	vendors := api.Group("/vendors", read)
	vendors.Get("/outstanding", balanceController.Outstanding)
	vendors.Get("/summary", analyticsController.Summary)
	vendors.Get("/monthly", analyticsController.MonthlyLedger)

	vendors.Get("/payments", paymentController.GetPayments)
	vendors.Get("/payments/export", paymentController.ExportPayments)
	vendors.Post("/payments", write, paymentController.CreatePayment)
	vendors.Post("/payments/import", write, paymentController.ImportPayments)
	vendors.Delete("/payments/:id", write, paymentController.DeletePayment)

	if deps.Integrity != nil {
		integrityController := Controllers.NewIntegrityController(deps.Integrity)
		vendors.Get("/integrity", integrityController.LastReport)
		vendors.Post("/integrity", write, integrityController.RunCheck)
	}

	vendors.Get("/:type", vendorController.GetVendors)
	vendors.Post("/:type", write, vendorController.CreateVendor)
	vendors.Get("/:type/:id", vendorController.GetVendor)
	vendors.Put("/:type/:id", write, vendorController.UpdateVendor)
	vendors.Delete("/:type/:id", write, vendorController.DeleteVendor)
	vendors.Get("/:type/:id/balance", vendorController.GetVendorBalance)
	vendors.Post("/:type/:id/advance", write, vendorController.RecordAdvance)

	// Request log routes
	logs := api.Group("/logs", write)
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)
}

// NewApp builds the Fiber app with middleware and routes.
func NewApp(cfg *Config.AppConfig, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Quarry Vendor Ledger",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(middleware.RequestLogger(cfg.RequestLogFile))

	SetupRoutes(app, cfg, deps)
	return app
}

func FiberConfig(cfg *Config.AppConfig, deps Deps) error {
	app := NewApp(cfg, deps)
	Logger.L.Info("Starting server", "port", cfg.Port)
	return app.Listen(":" + cfg.Port)
}
