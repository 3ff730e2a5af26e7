package integrity

import (
	"errors"

	"ticket-reconciler/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/events/:eventId", h.HandleLedgerCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/storage", h.HandleStorageCheck)
}

// HandleIntegrityCheck runs the schema and storage checks.
// @Summary Run All Integrity Checks
// @Description Performs the schema and storage checks.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := make(map[string]interface{})

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if structure, err := h.service.CheckStructure(c.Context()); err != nil {
		report["storage"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = structure
	}

	return c.JSON(report)
}

// HandleLedgerCheck runs the ledger rules for an event.
// @Summary Check Event Ledger
// @Description Checks the ticket sales of an event for negative amounts, zero quantities, missing or invalid customer data and duplicate orders.
// @Tags integrity
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} checks.LedgerReport "Ledger Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/events/{eventId} [get]
func (h *Handler) HandleLedgerCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckLedger(c.Context(), c.Params("eventId"))
	if err != nil {
		l.Error("Ledger check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleSchemaCheck checks the database schema.
// @Summary Check Database Schema
// @Description Checks that the reconciliation tables match the expected models.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleStorageCheck checks and optionally fixes the archive bucket.
// @Summary Check Archive Storage
// @Description Checks that the archive bucket and folders exist. Optionally creates them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create missing bucket and folders"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, errStorageDisabled) {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	if len(report.Missing) > 0 {
		l.Warn("Missing archive folders detected", zap.Strings("missing", report.Missing))

		if fix {
			l.Info("Attempting to fix archive storage")
			if err := h.service.FixStructure(c.Context(), report.Missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix storage",
					"details": err.Error(),
					"missing": report.Missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  report.Missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"bucket":  report.Bucket,
		"exists":  report.Exists,
		"missing": report.Missing,
	})
}
