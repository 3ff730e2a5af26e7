package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckAndSendAlerts(t *testing.T) {
	tests := []struct {
		name    string
		report  Report
		alerted bool
		reasons int
	}{
		{
			name:   "healthy run stays quiet",
			report: Report{SyncHealth: HealthHealthy, DiscrepanciesFound: 5, TotalLocalRevenue: dec("100"), TotalPlatformRevenue: dec("200")},
		},
		{
			name:    "critical health",
			report:  Report{SyncHealth: HealthCritical, TotalLocalRevenue: dec("0"), TotalPlatformRevenue: dec("0")},
			alerted: true,
			reasons: 1,
		},
		{
			name:    "too many discrepancies",
			report:  Report{SyncHealth: HealthWarning, DiscrepanciesFound: 6, TotalLocalRevenue: dec("0"), TotalPlatformRevenue: dec("0")},
			alerted: true,
			reasons: 1,
		},
		{
			name:    "revenue gap",
			report:  Report{SyncHealth: HealthWarning, TotalLocalRevenue: dec("1000"), TotalPlatformRevenue: dec("1100.01")},
			alerted: true,
			reasons: 1,
		},
		{
			name:    "every reason still sends one alert",
			report:  Report{SyncHealth: HealthCritical, DiscrepanciesFound: 9, TotalLocalRevenue: dec("0"), TotalPlatformRevenue: dec("500")},
			alerted: true,
			reasons: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}

			alerted := CheckAndSendAlerts(context.Background(), tt.report, DefaultConfig(), n, zap.NewNop(), t0)

			assert.Equal(t, tt.alerted, alerted)
			if !tt.alerted {
				assert.Zero(t, n.count())
				return
			}
			require.Equal(t, 1, n.count())
			assert.Len(t, n.alerts[0].Reasons, tt.reasons)
			assert.Equal(t, t0, n.alerts[0].RaisedAt)
		})
	}
}

func TestCheckAndSendAlerts_NotifierFailureIsSwallowed(t *testing.T) {
	n := &recordingNotifier{err: errBoom}
	report := Report{SyncHealth: HealthCritical, TotalLocalRevenue: dec("0"), TotalPlatformRevenue: dec("0")}

	alerted := CheckAndSendAlerts(context.Background(), report, DefaultConfig(), n, zap.NewNop(), t0)

	assert.True(t, alerted)
	assert.Equal(t, 1, n.count())
}

func TestCheckAndSendAlerts_WithoutNotifier(t *testing.T) {
	report := Report{SyncHealth: HealthCritical, TotalLocalRevenue: dec("0"), TotalPlatformRevenue: dec("0")}

	assert.True(t, CheckAndSendAlerts(context.Background(), report, DefaultConfig(), nil, nil, t0))
}
