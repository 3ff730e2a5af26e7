package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func localSale(id, order, amount, email string, at time.Time) LocalSale {
	return LocalSale{
		ID:              id,
		EventID:         "evt-1",
		Platform:        PlatformHumanitix,
		PlatformOrderID: order,
		TotalAmount:     dec(amount),
		PurchaseDate:    at,
		CustomerEmail:   email,
		CustomerName:    "Test Customer",
		TicketType:      "General Admission",
		Quantity:        1,
	}
}

func platformSale(order, amount, email string, at time.Time) PlatformSale {
	return PlatformSale{
		OrderID:       order,
		TotalAmount:   dec(amount),
		PurchaseDate:  at,
		CustomerEmail: email,
		CustomerName:  "Test Customer",
		TicketType:    "General Admission",
		Quantity:      1,
	}
}

func snapshot(local []LocalSale, remote []PlatformSale) Snapshot {
	return Snapshot{EventID: "evt-1", Platform: PlatformHumanitix, Local: local, Remote: remote}
}

func TestDetect_MissingSale(t *testing.T) {
	snap := snapshot(nil, []PlatformSale{platformSale("A-1", "50.00", "a@example.com", t0)})

	ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	require.Len(t, ds, 1)

	assert.Equal(t, KindMissingSale, ds[0].Kind())
	assert.Equal(t, SeverityHigh, ds[0].Severity)
	assert.Equal(t, "A-1", ds[0].PlatformData().OrderID)
	assert.Nil(t, ds[0].LocalData())
	assert.Equal(t, ResolutionNone, ds[0].Resolution)
	assert.Equal(t, t0, ds[0].DetectedAt)
}

func TestDetect_AmountMismatchSeverity(t *testing.T) {
	tests := []struct {
		name     string
		local    string
		remote   string
		severity Severity
	}{
		{name: "medium below ten", local: "72.45", remote: "70.00", severity: SeverityMedium},
		{name: "high above ten", local: "100.00", remote: "85.00", severity: SeverityHigh},
		{name: "exactly ten is medium", local: "60.00", remote: "50.00", severity: SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot(
				[]LocalSale{localSale("L1", "A-1", tt.local, "a@example.com", t0)},
				[]PlatformSale{platformSale("A-1", tt.remote, "a@example.com", t0)},
			)

			ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
			require.NoError(t, err)
			require.Len(t, ds, 1)

			assert.Equal(t, KindAmountMismatch, ds[0].Kind())
			assert.Equal(t, tt.severity, ds[0].Severity)
			diff := ds[0].Difference()
			require.NotNil(t, diff)
			assert.Equal(t, "total_amount", diff.Field)
			assert.True(t, diff.LocalValue.Equal(dec(tt.local)))
			assert.True(t, diff.PlatformValue.Equal(dec(tt.remote)))
		})
	}
}

func TestDetect_DifferenceWithinThresholdIsIgnored(t *testing.T) {
	snap := snapshot(
		[]LocalSale{localSale("L1", "A-1", "49.99", "a@example.com", t0)},
		[]PlatformSale{platformSale("A-1", "50.00", "a@example.com", t0)},
	)

	ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDetect_DifferenceEqualToThresholdIsIgnored(t *testing.T) {
	snap := snapshot(
		[]LocalSale{localSale("L1", "A-1", "51.00", "a@example.com", t0)},
		[]PlatformSale{platformSale("A-1", "50.00", "a@example.com", t0)},
	)

	ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDetect_LocalOnlySale(t *testing.T) {
	snap := snapshot(
		[]LocalSale{
			localSale("L1", "A-9", "20.00", "a@example.com", t0),
			localSale("L2", "", "15.00", "b@example.com", t0),
		},
		nil,
	)

	ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	for i, id := range []string{"L1", "L2"} {
		assert.Equal(t, KindDataInconsistency, ds[i].Kind())
		assert.Equal(t, SeverityMedium, ds[i].Severity)
		assert.Equal(t, id, ds[i].LocalData().ID)
	}
}

func TestDetect_DuplicateSale(t *testing.T) {
	first := localSale("L1", "A-1", "25.00", "dup@example.com", t0)
	second := localSale("L2", "A-2", "25.00", "dup@example.com", t0.Add(2*time.Minute))
	snap := snapshot(
		[]LocalSale{first, second},
		[]PlatformSale{
			platformSale("A-1", "25.00", "dup@example.com", t0),
			platformSale("A-2", "25.00", "dup@example.com", t0.Add(2*time.Minute)),
		},
	)

	ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	require.Len(t, ds, 1)

	assert.Equal(t, KindDuplicateSale, ds[0].Kind())
	assert.Equal(t, SeverityMedium, ds[0].Severity)
	assert.Equal(t, "L2", ds[0].LocalData().ID)
	assert.Equal(t, "L1", ds[0].RelatedSaleID())
}

func TestDetect_OutputOrder(t *testing.T) {
	snap := snapshot(
		[]LocalSale{
			localSale("L1", "A-1", "72.45", "a@example.com", t0),
			localSale("L2", "A-2", "30.00", "b@example.com", t0),
			localSale("L3", "Z-9", "10.00", "c@example.com", t0),
		},
		[]PlatformSale{
			platformSale("A-1", "70.00", "a@example.com", t0),
			platformSale("A-2", "30.00", "b@example.com", t0),
			platformSale("A-3", "15.00", "d@example.com", t0),
		},
	)

	ds, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	require.Len(t, ds, 3)

	assert.Equal(t, KindMissingSale, ds[0].Kind())
	assert.Equal(t, KindAmountMismatch, ds[1].Kind())
	assert.Equal(t, KindDataInconsistency, ds[2].Kind())
	assert.Equal(t, []string{"d-1", "d-2", "d-3"}, []string{ds[0].ID, ds[1].ID, ds[2].ID})
}

func TestDetect_Deterministic(t *testing.T) {
	snap := snapshot(
		[]LocalSale{
			localSale("L1", "A-1", "72.45", "a@example.com", t0),
			localSale("L2", "A-2", "25.00", "dup@example.com", t0),
			localSale("L3", "A-3", "25.00", "dup@example.com", t0.Add(time.Minute)),
		},
		[]PlatformSale{
			platformSale("A-1", "70.00", "a@example.com", t0),
			platformSale("A-4", "15.00", "d@example.com", t0),
		},
	)

	first, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	second, err := Detect(snap, DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDetect_EmptyInputs(t *testing.T) {
	ds, err := Detect(snapshot(nil, nil), DefaultConfig(), seqIDs("d"), t0)
	require.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Empty(t, ds)
}

func TestDetect_MalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		snap  Snapshot
		field string
	}{
		{
			name:  "missing event",
			snap:  Snapshot{Platform: PlatformHumanitix},
			field: "event_id",
		},
		{
			name:  "missing platform",
			snap:  Snapshot{EventID: "evt-1"},
			field: "platform",
		},
		{
			name: "duplicate local id",
			snap: snapshot([]LocalSale{
				localSale("L1", "A-1", "10.00", "a@example.com", t0),
				localSale("L1", "A-2", "10.00", "b@example.com", t0),
			}, nil),
			field: "local[1].id",
		},
		{
			name:  "blank order id",
			snap:  snapshot(nil, []PlatformSale{platformSale("", "10.00", "a@example.com", t0)}),
			field: "remote[0].order_id",
		},
		{
			name: "duplicate order id",
			snap: snapshot(nil, []PlatformSale{
				platformSale("A-1", "10.00", "a@example.com", t0),
				platformSale("A-1", "12.00", "a@example.com", t0),
			}),
			field: "remote[1].order_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Detect(tt.snap, DefaultConfig(), seqIDs("d"), t0)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
