package platforms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/core/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var centsPerUnit = decimal.NewFromInt(100)

type eventbriteAttendee struct {
	TicketClassName string `json:"ticket_class_name"`
	Quantity        any    `json:"quantity"`
}

type eventbriteOrder struct {
	ID        string `json:"id"`
	Created   string `json:"created"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Costs     struct {
		Gross struct {
			Value    any    `json:"value"`
			Currency string `json:"currency"`
		} `json:"gross"`
	} `json:"costs"`
	Attendees []eventbriteAttendee `json:"attendees"`
}

type eventbritePage struct {
	Orders     []eventbriteOrder `json:"orders"`
	Pagination struct {
		PageNumber   int    `json:"page_number"`
		HasMoreItems bool   `json:"has_more_items"`
		Continuation string `json:"continuation"`
	} `json:"pagination"`
}

// Eventbrite reads placed orders from the Eventbrite v3 API.
type Eventbrite struct {
	client   *apiClient
	maxPages int
	logger   *zap.Logger
}

// NewEventbrite creates an Eventbrite client.
func NewEventbrite(cfg Config, logger *zap.Logger) *Eventbrite {
	return &Eventbrite{
		client:   newAPIClient(reconcile.PlatformEventbrite, cfg.Eventbrite.BaseURL, cfg.Eventbrite.Token, cfg),
		maxPages: maxPages(cfg),
		logger:   logger,
	}
}

// FetchOrders returns every placed order of the external event.
func (e *Eventbrite) FetchOrders(ctx context.Context, externalEventID string) ([]reconcile.PlatformSale, error) {
	var sales []reconcile.PlatformSale
	continuation := ""

	for page := 1; page <= e.maxPages; page++ {
		params := url.Values{}
		params.Set("expand", "attendees")
		if continuation != "" {
			params.Set("continuation", continuation)
		} else {
			params.Set("page", fmt.Sprint(page))
		}

		var resp eventbritePage
		path := "/events/" + url.PathEscape(externalEventID) + "/orders/?" + params.Encode()
		if err := e.client.getJSON(ctx, path, &resp); err != nil {
			return nil, err
		}

		for _, o := range resp.Orders {
			if o.Status != "placed" {
				continue
			}
			sales = append(sales, o.normalize())
		}

		if !resp.Pagination.HasMoreItems {
			return sales, nil
		}
		continuation = resp.Pagination.Continuation
	}

	e.logger.Warn("Eventbrite pagination limit reached",
		zap.String("event", externalEventID),
		zap.Int("max_pages", e.maxPages))
	return sales, nil
}

func (o eventbriteOrder) normalize() reconcile.PlatformSale {
	// Gross value is reported in minor units.
	amount := utils.ToDecimal(o.Costs.Gross.Value).Div(centsPerUnit).Round(2)

	quantity := len(o.Attendees)
	if quantity == 0 {
		quantity = 1
	}
	types := make([]string, 0, len(o.Attendees))
	for _, a := range o.Attendees {
		types = append(types, a.TicketClassName)
	}

	name := strings.TrimSpace(o.Name)
	if name == "" {
		name = strings.TrimSpace(o.FirstName + " " + o.LastName)
	}

	return reconcile.PlatformSale{
		OrderID:       o.ID,
		TotalAmount:   amount,
		PurchaseDate:  parseTime(o.Created),
		CustomerEmail: strings.TrimSpace(o.Email),
		CustomerName:  name,
		TicketType:    joinUnique(types),
		Quantity:      quantity,
	}
}
