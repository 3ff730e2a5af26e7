package reconcile

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// AdjustmentType selects the ledger mutation of a manual adjustment.
type AdjustmentType string

const (
	AdjustAddSale      AdjustmentType = "add_sale"
	AdjustRemoveSale   AdjustmentType = "remove_sale"
	AdjustUpdateAmount AdjustmentType = "update_amount"
)

// ManualAdjustment is an operator-driven ledger change. Reason is mandatory.
type ManualAdjustment struct {
	Type   AdjustmentType   `json:"type"`
	SaleID string           `json:"sale_id,omitempty"`
	Sale   *LocalSale       `json:"sale,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason string           `json:"reason"`
}

// AdjustmentResult identifies what a manual adjustment touched.
type AdjustmentResult struct {
	SaleID  string `json:"sale_id"`
	AuditID string `json:"audit_id"`
}

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from operator supplied text.
func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// Validate checks the adjustment and returns an error wrapping
// ErrInvalidAdjustment when it cannot be applied.
func (a ManualAdjustment) Validate() error {
	if sanitizeText(a.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidAdjustment)
	}

	switch a.Type {
	case AdjustAddSale:
		if a.Sale == nil {
			return fmt.Errorf("%w: add_sale requires sale data", ErrInvalidAdjustment)
		}
		if a.Sale.TotalAmount.IsNegative() {
			return fmt.Errorf("%w: sale amount must not be negative", ErrInvalidAdjustment)
		}
	case AdjustRemoveSale:
		if a.SaleID == "" {
			return fmt.Errorf("%w: remove_sale requires sale_id", ErrInvalidAdjustment)
		}
	case AdjustUpdateAmount:
		if a.SaleID == "" || a.Amount == nil {
			return fmt.Errorf("%w: update_amount requires sale_id and amount", ErrInvalidAdjustment)
		}
		if a.Amount.IsNegative() {
			return fmt.Errorf("%w: amount must not be negative", ErrInvalidAdjustment)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAdjustment, a.Type)
	}
	return nil
}

// ValidateResolution checks an operator supplied resolution.
func ValidateResolution(r Resolution) error {
	switch r {
	case ResolutionIgnored, ResolutionPlatformUpdated, ResolutionManualReview:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidResolution, r)
}
