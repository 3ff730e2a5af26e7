package platforms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/core/utils"

	"go.uber.org/zap"
)

const humanitixPageSize = 100

type humanitixTicket struct {
	TicketTypeName string `json:"ticketTypeName"`
	Name           string `json:"name"`
	Quantity       any    `json:"quantity"`
}

type humanitixTotals struct {
	Total any `json:"total"`
}

type humanitixOrder struct {
	MongoID         string            `json:"_id"`
	ID              string            `json:"id"`
	OrderName       string            `json:"orderName"`
	Status          string            `json:"status"`
	FinancialStatus string            `json:"financialStatus"`
	Email           string            `json:"email"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	CreatedAt       string            `json:"createdAt"`
	TotalAmount     any               `json:"total_amount"`
	Totals          *humanitixTotals  `json:"totals"`
	Tickets         []humanitixTicket `json:"tickets"`
}

type humanitixPage struct {
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Orders   []humanitixOrder `json:"orders"`
}

// Humanitix reads paid orders from the Humanitix public API.
type Humanitix struct {
	client   *apiClient
	maxPages int
	logger   *zap.Logger
}

// NewHumanitix creates a Humanitix client.
func NewHumanitix(cfg Config, logger *zap.Logger) *Humanitix {
	return &Humanitix{
		client:   newAPIClient(reconcile.PlatformHumanitix, cfg.Humanitix.BaseURL, cfg.Humanitix.APIKey, cfg),
		maxPages: maxPages(cfg),
		logger:   logger,
	}
}

// FetchOrders returns every paid order of the external event.
func (h *Humanitix) FetchOrders(ctx context.Context, externalEventID string) ([]reconcile.PlatformSale, error) {
	var sales []reconcile.PlatformSale

	for page := 1; page <= h.maxPages; page++ {
		params := url.Values{}
		params.Set("page", fmt.Sprint(page))
		params.Set("pageSize", fmt.Sprint(humanitixPageSize))

		var resp humanitixPage
		path := "/events/" + url.PathEscape(externalEventID) + "/orders?" + params.Encode()
		if err := h.client.getJSON(ctx, path, &resp); err != nil {
			return nil, err
		}

		for _, o := range resp.Orders {
			if !o.paid() {
				continue
			}
			sales = append(sales, o.normalize())
		}

		if len(resp.Orders) < humanitixPageSize || (resp.Total > 0 && page*humanitixPageSize >= resp.Total) {
			return sales, nil
		}
	}

	h.logger.Warn("Humanitix pagination limit reached",
		zap.String("event", externalEventID),
		zap.Int("max_pages", h.maxPages))
	return sales, nil
}

func (o humanitixOrder) paid() bool {
	if strings.EqualFold(o.FinancialStatus, "paid") {
		return true
	}
	switch strings.ToLower(o.Status) {
	case "paid", "complete", "completed":
		return true
	}
	return false
}

func (o humanitixOrder) orderID() string {
	switch {
	case o.MongoID != "":
		return o.MongoID
	case o.ID != "":
		return o.ID
	}
	return o.OrderName
}

func (o humanitixOrder) normalize() reconcile.PlatformSale {
	amount := utils.ToDecimal(o.TotalAmount)
	if o.Totals != nil {
		if total := utils.ToDecimal(o.Totals.Total); !total.IsZero() {
			amount = total
		}
	}

	quantity := 0
	types := make([]string, 0, len(o.Tickets))
	for _, t := range o.Tickets {
		q := utils.ToInt(t.Quantity)
		if q <= 0 {
			q = 1
		}
		quantity += q

		name := t.TicketTypeName
		if name == "" {
			name = t.Name
		}
		types = append(types, name)
	}

	return reconcile.PlatformSale{
		OrderID:       o.orderID(),
		TotalAmount:   amount.Round(2),
		PurchaseDate:  parseTime(o.CreatedAt),
		CustomerEmail: strings.TrimSpace(o.Email),
		CustomerName:  strings.TrimSpace(o.FirstName + " " + o.LastName),
		TicketType:    joinUnique(types),
		Quantity:      quantity,
	}
}

func maxPages(cfg Config) int {
	if cfg.MaxPages <= 0 {
		return 500
	}
	return cfg.MaxPages
}
