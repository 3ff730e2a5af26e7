package reconciliation

import (
	"errors"
	"time"

	"ticket-reconciler/core/logger"
	"ticket-reconciler/core/reconcile"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = validator.New()

// Handler handles HTTP requests for reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/reconciliation")

	events := group.Group("/events/:eventId")
	events.Post("/run", h.HandleRun)
	events.Get("/stats", h.HandleStats)
	events.Get("/history", h.HandleHistory)
	events.Get("/discrepancies", h.HandleUnresolved)
	events.Post("/adjustments", h.HandleAdjustment)
	events.Post("/reprocess", h.HandleReprocess)
	events.Get("/platforms", h.HandleListPlatforms)
	events.Put("/platforms", h.HandleLinkPlatform)
	events.Get("/audit", h.HandleAuditLog)
	events.Get("/archive", h.HandleListArchive)
	events.Get("/archive/:reportId", h.HandleGetArchive)

	group.Get("/reports/:id", h.HandleGetReport)
	group.Post("/discrepancies/:id/resolve", h.HandleResolve)
}

// SaleRequest is the ledger row of an add_sale adjustment.
type SaleRequest struct {
	ID              string          `json:"id"`
	PlatformOrderID string          `json:"platform_order_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PurchaseDate    *time.Time      `json:"purchase_date"`
	CustomerEmail   string          `json:"customer_email" validate:"omitempty,email"`
	CustomerName    string          `json:"customer_name" validate:"max=255"`
	TicketType      string          `json:"ticket_type" validate:"max=255"`
	Quantity        int             `json:"quantity" validate:"gte=0"`
}

// AdjustmentRequest is the body of a manual adjustment.
type AdjustmentRequest struct {
	Platform string           `json:"platform" validate:"required"`
	Type     string           `json:"type" validate:"required,oneof=add_sale remove_sale update_amount"`
	SaleID   string           `json:"sale_id"`
	Amount   *decimal.Decimal `json:"amount"`
	Sale     *SaleRequest     `json:"sale"`
	Reason   string           `json:"reason" validate:"required,max=1000"`
}

// ResolveRequest is the body of a discrepancy resolution.
type ResolveRequest struct {
	Resolution string `json:"resolution" validate:"required,oneof=ignored platform_updated manual_review"`
	Notes      string `json:"notes" validate:"max=2000"`
}

// LinkRequest is the body of a platform link.
type LinkRequest struct {
	Platform        string `json:"platform" validate:"required,oneof=humanitix eventbrite"`
	ExternalEventID string `json:"external_event_id" validate:"required,max=191"`
}

// HandleRun runs a reconciliation.
// @Summary Run Reconciliation
// @Description Reconciles the ledger of an event against one platform, or every linked platform when none is given.
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Param platform query string false "Platform (humanitix, eventbrite)"
// @Success 200 {object} map[string]interface{} "Reports"
// @Failure 409 {object} map[string]string "Run in progress"
// @Failure 502 {object} map[string]interface{} "Platform fetch failed"
// @Router /reconciliation/events/{eventId}/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	eventID := c.Params("eventId")
	platform := c.Query("platform")

	reports, err := h.service.Run(c.Context(), eventID, platform)
	if err != nil {
		l.Error("Reconciliation run failed", zap.String("event_id", eventID), zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error":   err.Error(),
			"reports": reports,
		})
	}

	return c.JSON(fiber.Map{"reports": reports})
}

// HandleStats returns reconciliation statistics.
// @Summary Reconciliation Stats
// @Description Health trend and per-platform breakdown of recent runs.
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} reconcile.Stats "Stats"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconciliation/events/{eventId}/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context(), c.Params("eventId"))
	if err != nil {
		return h.fail(c, "Stats failed", err)
	}
	return c.JSON(stats)
}

// HandleHistory returns recent reports.
// @Summary Reconciliation History
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Param limit query int false "Max reports (default 10, max 100)"
// @Success 200 {array} reconcile.Report "Reports"
// @Router /reconciliation/events/{eventId}/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	reports, err := h.service.History(c.Context(), c.Params("eventId"), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, "History failed", err)
	}
	return c.JSON(reports)
}

// HandleUnresolved lists open discrepancies.
// @Summary Unresolved Discrepancies
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {array} reconcile.Discrepancy "Discrepancies"
// @Router /reconciliation/events/{eventId}/discrepancies [get]
func (h *Handler) HandleUnresolved(c *fiber.Ctx) error {
	ds, err := h.service.Unresolved(c.Context(), c.Params("eventId"))
	if err != nil {
		return h.fail(c, "Listing discrepancies failed", err)
	}
	return c.JSON(ds)
}

// HandleAdjustment applies a manual ledger adjustment.
// @Summary Manual Adjustment
// @Description Adds, removes or re-prices a ledger sale. Every adjustment is audited.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param body body AdjustmentRequest true "Adjustment"
// @Success 201 {object} reconcile.AdjustmentResult "Result"
// @Failure 400 {object} map[string]interface{} "Invalid adjustment"
// @Failure 404 {object} map[string]string "Sale not found"
// @Router /reconciliation/events/{eventId}/adjustments [post]
func (h *Handler) HandleAdjustment(c *fiber.Ctx) error {
	var req AdjustmentRequest
	if problem := bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	adj := reconcile.ManualAdjustment{
		Type:   reconcile.AdjustmentType(req.Type),
		SaleID: req.SaleID,
		Amount: req.Amount,
		Reason: req.Reason,
	}
	if req.Sale != nil {
		sale := reconcile.LocalSale{
			ID:              req.Sale.ID,
			PlatformOrderID: req.Sale.PlatformOrderID,
			TotalAmount:     req.Sale.TotalAmount,
			CustomerEmail:   req.Sale.CustomerEmail,
			CustomerName:    req.Sale.CustomerName,
			TicketType:      req.Sale.TicketType,
			Quantity:        req.Sale.Quantity,
		}
		if req.Sale.PurchaseDate != nil {
			sale.PurchaseDate = req.Sale.PurchaseDate.UTC()
		}
		adj.Sale = &sale
	}

	result, err := h.service.Adjust(c.Context(), c.Params("eventId"), req.Platform, adj)
	if err != nil {
		return h.fail(c, "Manual adjustment failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleResolve records an operator decision.
// @Summary Resolve Discrepancy
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param id path string true "Discrepancy ID"
// @Param body body ResolveRequest true "Resolution"
// @Success 200 {object} reconcile.Discrepancy "Discrepancy"
// @Failure 409 {object} map[string]string "Already resolved"
// @Router /reconciliation/discrepancies/{id}/resolve [post]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	var req ResolveRequest
	if problem := bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	d, err := h.service.Resolve(c.Context(), c.Params("id"), reconcile.Resolution(req.Resolution), req.Notes)
	if err != nil {
		return h.fail(c, "Resolve failed", err)
	}
	return c.JSON(d)
}

// HandleReprocess re-runs automatic resolution.
// @Summary Reprocess Discrepancies
// @Description Applies the current auto-correct settings to open discrepancies.
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Param platform query string false "Platform"
// @Success 200 {object} map[string]int "Resolved count"
// @Router /reconciliation/events/{eventId}/reprocess [post]
func (h *Handler) HandleReprocess(c *fiber.Ctx) error {
	n, err := h.service.Reprocess(c.Context(), c.Params("eventId"), c.Query("platform"))
	if err != nil {
		return h.fail(c, "Reprocess failed", err)
	}
	return c.JSON(fiber.Map{"resolved": n})
}

// HandleListPlatforms lists the platform links of an event.
// @Summary Event Platforms
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {array} reconcile.PlatformLink "Links"
// @Router /reconciliation/events/{eventId}/platforms [get]
func (h *Handler) HandleListPlatforms(c *fiber.Ctx) error {
	links, err := h.service.Platforms(c.Context(), c.Params("eventId"))
	if err != nil {
		return h.fail(c, "Listing platforms failed", err)
	}
	return c.JSON(links)
}

// HandleLinkPlatform links an event to a platform event.
// @Summary Link Platform
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param body body LinkRequest true "Link"
// @Success 200 {object} reconcile.PlatformLink "Link"
// @Router /reconciliation/events/{eventId}/platforms [put]
func (h *Handler) HandleLinkPlatform(c *fiber.Ctx) error {
	var req LinkRequest
	if problem := bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	link := reconcile.PlatformLink{
		EventID:         c.Params("eventId"),
		Platform:        req.Platform,
		ExternalEventID: req.ExternalEventID,
	}
	if err := h.service.LinkPlatform(c.Context(), link); err != nil {
		return h.fail(c, "Linking platform failed", err)
	}
	return c.JSON(link)
}

// HandleAuditLog lists recent audit entries.
// @Summary Audit Log
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} reconcile.AuditEntry "Entries"
// @Router /reconciliation/events/{eventId}/audit [get]
func (h *Handler) HandleAuditLog(c *fiber.Ctx) error {
	entries, err := h.service.AuditLog(c.Context(), c.Params("eventId"), c.QueryInt("limit", 0))
	if err != nil {
		return h.fail(c, "Audit log failed", err)
	}
	return c.JSON(entries)
}

// HandleGetReport returns a stored report.
// @Summary Get Report
// @Tags reconciliation
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} reconcile.Report "Report"
// @Failure 404 {object} map[string]string "Not found"
// @Router /reconciliation/reports/{id} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	report, err := h.service.Report(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Loading report failed", err)
	}
	return c.JSON(report)
}

// HandleListArchive lists archived report files.
// @Summary List Archived Reports
// @Tags reconciliation
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} map[string]interface{} "Files"
// @Failure 503 {object} map[string]string "Archive disabled"
// @Router /reconciliation/events/{eventId}/archive [get]
func (h *Handler) HandleListArchive(c *fiber.Ctx) error {
	files, err := h.service.ArchivedReports(c.Context(), c.Params("eventId"))
	if err != nil {
		return h.fail(c, "Listing archive failed", err)
	}
	return c.JSON(fiber.Map{"files": files})
}

// HandleGetArchive downloads an archived report.
// @Summary Download Archived Report
// @Tags reconciliation
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param eventId path string true "Event ID"
// @Param reportId path string true "Report ID"
// @Param format query string false "json or xlsx (default json)"
// @Success 200 {file} file "Report file"
// @Router /reconciliation/events/{eventId}/archive/{reportId} [get]
func (h *Handler) HandleGetArchive(c *fiber.Ctx) error {
	format := c.Query("format", "json")
	reportID := c.Params("reportId")

	data, err := h.service.ArchivedReport(c.Context(), c.Params("eventId"), reportID, format)
	if err != nil {
		return h.fail(c, "Reading archived report failed", err)
	}

	c.Set(fiber.HeaderContentType, ContentType(format))
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+reportID+"."+format)
	return c.Send(data)
}

// bind parses and validates a JSON body. It returns the 400 body on failure.
func bind(c *fiber.Ctx, out any) fiber.Map {
	if err := c.BodyParser(out); err != nil {
		return fiber.Map{"error": "invalid request body"}
	}
	if err := validate.Struct(out); err != nil {
		return fiber.Map{
			"error":  "validation failed",
			"fields": validationFields(err),
		}
	}
	return nil
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := statusFor(err)
	l := logger.WithRayID(h.service.logger, c)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		verr *reconcile.ValidationError
		ferr *reconcile.FetchError
	)
	switch {
	case errors.As(err, &verr),
		errors.Is(err, reconcile.ErrInvalidAdjustment),
		errors.Is(err, reconcile.ErrInvalidResolution):
		return fiber.StatusBadRequest
	case errors.As(err, &ferr) && errors.Is(err, reconcile.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &ferr):
		return fiber.StatusBadGateway
	case errors.Is(err, reconcile.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, reconcile.ErrRunInProgress),
		errors.Is(err, reconcile.ErrAlreadyResolved):
		return fiber.StatusConflict
	case errors.Is(err, ErrArchiveDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
