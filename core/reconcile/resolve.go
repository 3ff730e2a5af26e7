package reconcile

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result of resolving one discrepancy.
type Outcome struct {
	DiscrepancyID string
	Kind          Kind

	// Resolution is the state after this pass. Empty means still unresolved.
	Resolution Resolution

	// Changed is true when this pass moved the discrepancy to a new state.
	Changed bool

	Err error
}

// Resolver applies automatic resolution actions to discrepancies.
type Resolver struct {
	Store       Store
	Logger      *zap.Logger
	NewID       IDGenerator
	Now         func() time.Time
	Concurrency int
}

// Resolve processes every discrepancy independently. Each element of ds is
// updated in place with its new resolution. A failure on one item never
// affects the others; it is reported in its Outcome. The returned count is
// the number of discrepancies auto-corrected by this pass.
func (r *Resolver) Resolve(ctx context.Context, ds []Discrepancy, cfg Config) ([]Outcome, int) {
	outcomes := make([]Outcome, len(ds))

	limit := r.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range ds {
		i := i
		g.Go(func() error {
			outcomes[i] = r.resolveOne(ctx, &ds[i], cfg)
			return nil
		})
	}
	_ = g.Wait()

	resolved := 0
	for _, o := range outcomes {
		if o.Err != nil {
			r.logger().Warn("Failed to resolve discrepancy",
				zap.String("discrepancy_id", o.DiscrepancyID),
				zap.String("kind", string(o.Kind)),
				zap.Error(o.Err))
			continue
		}
		if o.Changed && o.Resolution == ResolutionAutoCorrected {
			resolved++
		}
	}

	return outcomes, resolved
}

func (r *Resolver) resolveOne(ctx context.Context, d *Discrepancy, cfg Config) Outcome {
	out := Outcome{DiscrepancyID: d.ID, Kind: d.Kind(), Resolution: d.Resolution}

	// Already handled discrepancies are never acted on twice.
	if d.Resolution != ResolutionNone {
		return out
	}

	var (
		next Resolution
		err  error
	)
	switch f := d.Finding.(type) {
	case MissingSale:
		next, err = r.importSale(ctx, d, f)
	case AmountMismatch:
		next, err = r.correctAmount(ctx, d, f, cfg)
	case DuplicateSale, DataInconsistency:
		next = ResolutionManualReview
	default:
		err = errors.New("discrepancy has no finding")
	}

	if err != nil {
		out.Err = &ResolutionError{DiscrepancyID: d.ID, Kind: d.Kind(), Err: err}
		return out
	}
	if next == ResolutionNone {
		return out
	}

	d.Resolution = next
	if next.IsTerminal() {
		at := r.now()
		d.ResolvedAt = &at
	}
	out.Resolution = next
	out.Changed = true
	return out
}

func (r *Resolver) importSale(ctx context.Context, d *Discrepancy, f MissingSale) (Resolution, error) {
	sale := f.Platform.ToLocal(r.newID(), d.EventID, d.Platform)

	err := r.Store.Atomic(ctx, func(tx Store) error {
		inserted, err := tx.InsertSale(ctx, sale, FlagReconciliationImport)
		if err != nil {
			return err
		}
		return tx.LogAction(ctx, AuditEntry{
			ID:       r.newID(),
			EventID:  d.EventID,
			Platform: d.Platform,
			Action:   ActionImportSale,
			Reason:   "imported missing platform sale",
			Metadata: map[string]any{
				"discrepancy_id":    d.ID,
				"platform_order_id": f.Platform.OrderID,
				"total_amount":      f.Platform.TotalAmount.String(),
				"inserted":          inserted,
			},
			CreatedAt: r.now(),
		})
	})
	if err != nil {
		return ResolutionNone, err
	}
	return ResolutionAutoCorrected, nil
}

func (r *Resolver) correctAmount(ctx context.Context, d *Discrepancy, f AmountMismatch, cfg Config) (Resolution, error) {
	// The gate is re-checked here: the config may differ from detection time.
	if !f.Difference.Gap().LessThan(cfg.AutoCorrectThreshold) {
		return ResolutionNone, nil
	}

	err := r.Store.Atomic(ctx, func(tx Store) error {
		if err := tx.UpdateSaleAmount(ctx, f.Local.ID, f.Platform.TotalAmount, FlagReconciliationCorrected); err != nil {
			return err
		}
		return tx.LogAction(ctx, AuditEntry{
			ID:       r.newID(),
			EventID:  d.EventID,
			Platform: d.Platform,
			Action:   ActionCorrectAmount,
			Reason:   "corrected amount to platform value",
			Metadata: map[string]any{
				"discrepancy_id": d.ID,
				"sale_id":        f.Local.ID,
				"old_amount":     f.Difference.LocalValue.String(),
				"new_amount":     f.Difference.PlatformValue.String(),
			},
			CreatedAt: r.now(),
		})
	})
	if err != nil {
		return ResolutionNone, err
	}
	return ResolutionAutoCorrected, nil
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Resolver) newID() string {
	if r.NewID == nil {
		return UUIDGenerator()
	}
	return r.NewID()
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now()
}
