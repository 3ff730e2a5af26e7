package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// highMismatchAmount is the gap above which an amount mismatch is high severity.
var highMismatchAmount = decimal.NewFromInt(10)

// Snapshot is the input of one detection pass.
type Snapshot struct {
	EventID  string
	Platform string
	Local    []LocalSale
	Remote   []PlatformSale
}

// Detect compares the ledger against platform orders and returns every
// discrepancy found. Output order is: missing sales in platform order, then
// local-only rows and amount mismatches in ledger order, then duplicates.
// Detect performs no I/O; ids come from newID and every discrepancy is
// stamped with detectedAt.
func Detect(snap Snapshot, cfg Config, newID IDGenerator, detectedAt time.Time) ([]Discrepancy, error) {
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	if newID == nil {
		newID = UUIDGenerator
	}

	localByOrder := make(map[string]LocalSale, len(snap.Local))
	for _, sale := range snap.Local {
		if sale.PlatformOrderID != "" {
			localByOrder[sale.PlatformOrderID] = sale
		}
	}
	remoteByOrder := make(map[string]PlatformSale, len(snap.Remote))
	for _, sale := range snap.Remote {
		remoteByOrder[sale.OrderID] = sale
	}

	discrepancies := make([]Discrepancy, 0)
	add := func(f Finding, severity Severity) {
		discrepancies = append(discrepancies, Discrepancy{
			ID:         newID(),
			EventID:    snap.EventID,
			Platform:   snap.Platform,
			Finding:    f,
			Severity:   severity,
			DetectedAt: detectedAt,
		})
	}

	for _, remote := range snap.Remote {
		if _, ok := localByOrder[remote.OrderID]; !ok {
			add(MissingSale{Platform: remote}, SeverityHigh)
		}
	}

	for _, local := range snap.Local {
		remote, ok := remoteByOrder[local.PlatformOrderID]
		if local.PlatformOrderID == "" || !ok {
			add(DataInconsistency{Local: local}, SeverityMedium)
			continue
		}

		diff := Difference{
			Field:         "total_amount",
			LocalValue:    local.TotalAmount,
			PlatformValue: remote.TotalAmount,
		}
		gap := diff.Gap()
		if gap.GreaterThan(cfg.AutoCorrectThreshold) {
			severity := SeverityMedium
			if gap.GreaterThan(highMismatchAmount) {
				severity = SeverityHigh
			}
			add(AmountMismatch{Local: local, Platform: remote, Difference: diff}, severity)
		}
	}

	for _, dup := range FindDuplicates(snap.Local, cfg.DuplicateTimeWindow, cfg.groupKey()) {
		add(DuplicateSale{Local: dup.Sale, PreviousID: dup.Previous.ID}, SeverityMedium)
	}

	return discrepancies, nil
}

func validateSnapshot(snap Snapshot) error {
	if snap.EventID == "" {
		return &ValidationError{Field: "event_id", Reason: "must not be empty"}
	}
	if snap.Platform == "" {
		return &ValidationError{Field: "platform", Reason: "must not be empty"}
	}

	seen := make(map[string]struct{}, len(snap.Local))
	for i, sale := range snap.Local {
		if sale.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("local[%d].id", i), Reason: "must not be empty"}
		}
		if _, dup := seen[sale.ID]; dup {
			return &ValidationError{Field: fmt.Sprintf("local[%d].id", i), Reason: fmt.Sprintf("duplicate sale id %q", sale.ID)}
		}
		seen[sale.ID] = struct{}{}
	}

	orders := make(map[string]struct{}, len(snap.Remote))
	for i, sale := range snap.Remote {
		if sale.OrderID == "" {
			return &ValidationError{Field: fmt.Sprintf("remote[%d].order_id", i), Reason: "must not be empty"}
		}
		if _, dup := orders[sale.OrderID]; dup {
			return &ValidationError{Field: fmt.Sprintf("remote[%d].order_id", i), Reason: fmt.Sprintf("duplicate order id %q", sale.OrderID)}
		}
		orders[sale.OrderID] = struct{}{}
	}

	return nil
}
