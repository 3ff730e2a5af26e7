package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"ticket-reconciler/core/loader"
	"ticket-reconciler/core/logger"
	"ticket-reconciler/core/middleware/auth"
	"ticket-reconciler/core/middleware/rayid"

	"ticket-reconciler/feature/integrity"
	"ticket-reconciler/feature/reconciliation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "ticket-reconciler/docs/swagger"
)

// @title Ticket Reconciler API
// @version 1.0
// @description API for reconciling ticket sales with ticketing platforms.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Migrates the database, starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Configuration, logger, database, locks and archive
		svc, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer svc.Close()

		logg := svc.logger
		zap.ReplaceGlobals(logg)
		cfg := svc.cfg

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Server.ReadTimeout(),
			WriteTimeout:          cfg.Server.WriteTimeout(),
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(reconciliation.NewFeature(svc.service))
		mgr.Register(integrity.NewFeature(svc.storage, cfg.Storage.Bucket, cfg.Storage.Region, logg, svc.db))

		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
