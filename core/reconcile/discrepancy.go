package reconcile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Finding is the kind-specific payload of a discrepancy. The set of
// implementations is closed: MissingSale, AmountMismatch, DuplicateSale and
// DataInconsistency.
type Finding interface {
	Kind() Kind
	finding()
}

// MissingSale is an order the platform knows about but the ledger does not.
type MissingSale struct {
	Platform PlatformSale
}

// AmountMismatch is an order present on both sides with different totals.
type AmountMismatch struct {
	Local      LocalSale
	Platform   PlatformSale
	Difference Difference
}

// DuplicateSale is a ledger row that looks like a repeat of an earlier one.
type DuplicateSale struct {
	Local      LocalSale
	PreviousID string
}

// DataInconsistency is a ledger row the platform does not know about.
type DataInconsistency struct {
	Local LocalSale
}

func (MissingSale) Kind() Kind       { return KindMissingSale }
func (AmountMismatch) Kind() Kind    { return KindAmountMismatch }
func (DuplicateSale) Kind() Kind     { return KindDuplicateSale }
func (DataInconsistency) Kind() Kind { return KindDataInconsistency }

func (MissingSale) finding()       {}
func (AmountMismatch) finding()    {}
func (DuplicateSale) finding()     {}
func (DataInconsistency) finding() {}

// Difference describes a field that disagrees between ledger and platform.
type Difference struct {
	Field         string          `json:"field"`
	LocalValue    decimal.Decimal `json:"local_value"`
	PlatformValue decimal.Decimal `json:"platform_value"`
}

// Gap returns the absolute difference between both values.
func (d Difference) Gap() decimal.Decimal {
	return d.LocalValue.Sub(d.PlatformValue).Abs()
}

// Discrepancy is one detected inconsistency within a report.
type Discrepancy struct {
	ID         string
	ReportID   string
	EventID    string
	Platform   string
	Finding    Finding
	Severity   Severity
	DetectedAt time.Time
	Resolution Resolution
	ResolvedAt *time.Time
	Notes      string
}

// Kind returns the kind of the underlying finding.
func (d Discrepancy) Kind() Kind {
	if d.Finding == nil {
		return ""
	}
	return d.Finding.Kind()
}

// LocalData returns the ledger row involved, if any.
func (d Discrepancy) LocalData() *LocalSale {
	switch f := d.Finding.(type) {
	case AmountMismatch:
		return &f.Local
	case DuplicateSale:
		return &f.Local
	case DataInconsistency:
		return &f.Local
	}
	return nil
}

// PlatformData returns the platform order involved, if any.
func (d Discrepancy) PlatformData() *PlatformSale {
	switch f := d.Finding.(type) {
	case MissingSale:
		return &f.Platform
	case AmountMismatch:
		return &f.Platform
	}
	return nil
}

// Difference returns the field difference of an amount mismatch.
func (d Discrepancy) Difference() *Difference {
	if f, ok := d.Finding.(AmountMismatch); ok {
		return &f.Difference
	}
	return nil
}

// RelatedSaleID returns the earlier sale a duplicate repeats.
func (d Discrepancy) RelatedSaleID() string {
	if f, ok := d.Finding.(DuplicateSale); ok {
		return f.PreviousID
	}
	return ""
}

// NewFinding rebuilds a finding from its stored parts.
func NewFinding(kind Kind, local *LocalSale, platform *PlatformSale, diff *Difference, relatedID string) (Finding, error) {
	switch kind {
	case KindMissingSale:
		if platform == nil {
			return nil, fmt.Errorf("%s finding without platform data", kind)
		}
		return MissingSale{Platform: *platform}, nil
	case KindAmountMismatch:
		if local == nil || platform == nil || diff == nil {
			return nil, fmt.Errorf("%s finding with incomplete data", kind)
		}
		return AmountMismatch{Local: *local, Platform: *platform, Difference: *diff}, nil
	case KindDuplicateSale:
		if local == nil {
			return nil, fmt.Errorf("%s finding without local data", kind)
		}
		return DuplicateSale{Local: *local, PreviousID: relatedID}, nil
	case KindDataInconsistency:
		if local == nil {
			return nil, fmt.Errorf("%s finding without local data", kind)
		}
		return DataInconsistency{Local: *local}, nil
	}
	return nil, fmt.Errorf("unknown discrepancy kind %q", kind)
}

type discrepancyJSON struct {
	ID            string        `json:"id"`
	ReportID      string        `json:"report_id"`
	EventID       string        `json:"event_id"`
	Platform      string        `json:"platform"`
	Type          Kind          `json:"type"`
	Severity      Severity      `json:"severity"`
	LocalData     *LocalSale    `json:"local_data,omitempty"`
	PlatformData  *PlatformSale `json:"platform_data,omitempty"`
	Difference    *Difference   `json:"difference,omitempty"`
	RelatedSaleID string        `json:"related_sale_id,omitempty"`
	DetectedAt    time.Time     `json:"detected_at"`
	Resolution    Resolution    `json:"resolution,omitempty"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// MarshalJSON flattens the finding into local_data / platform_data / difference.
func (d Discrepancy) MarshalJSON() ([]byte, error) {
	return json.Marshal(discrepancyJSON{
		ID:            d.ID,
		ReportID:      d.ReportID,
		EventID:       d.EventID,
		Platform:      d.Platform,
		Type:          d.Kind(),
		Severity:      d.Severity,
		LocalData:     d.LocalData(),
		PlatformData:  d.PlatformData(),
		Difference:    d.Difference(),
		RelatedSaleID: d.RelatedSaleID(),
		DetectedAt:    d.DetectedAt,
		Resolution:    d.Resolution,
		ResolvedAt:    d.ResolvedAt,
		Notes:         d.Notes,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (d *Discrepancy) UnmarshalJSON(data []byte) error {
	var raw discrepancyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	finding, err := NewFinding(raw.Type, raw.LocalData, raw.PlatformData, raw.Difference, raw.RelatedSaleID)
	if err != nil {
		return err
	}
	*d = Discrepancy{
		ID:         raw.ID,
		ReportID:   raw.ReportID,
		EventID:    raw.EventID,
		Platform:   raw.Platform,
		Finding:    finding,
		Severity:   raw.Severity,
		DetectedAt: raw.DetectedAt,
		Resolution: raw.Resolution,
		ResolvedAt: raw.ResolvedAt,
		Notes:      raw.Notes,
	}
	return nil
}
