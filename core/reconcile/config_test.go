package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_ToConfig(t *testing.T) {
	s := Settings{
		AutoCorrectThreshold:   "2.50",
		DuplicateWindowMinutes: 10,
		AlertCount:             3,
		AlertAmount:            "250",
	}

	cfg, err := s.ToConfig()
	require.NoError(t, err)

	assert.True(t, cfg.AutoCorrectThreshold.Equal(dec("2.5")))
	assert.Equal(t, 10*time.Minute, cfg.DuplicateTimeWindow)
	assert.Equal(t, 3, cfg.AlertThreshold.Count)
	assert.True(t, cfg.AlertThreshold.Amount.Equal(dec("250")))
	assert.NotNil(t, cfg.GroupKey)
}

func TestSettings_ToConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		s     Settings
		field string
	}{
		{name: "threshold not a number", s: Settings{AutoCorrectThreshold: "abc", AlertAmount: "1"}, field: "auto_correct_threshold"},
		{name: "negative threshold", s: Settings{AutoCorrectThreshold: "-1", AlertAmount: "1"}, field: "auto_correct_threshold"},
		{name: "alert amount not a number", s: Settings{AutoCorrectThreshold: "1", AlertAmount: ""}, field: "alert_amount"},
		{name: "negative window", s: Settings{AutoCorrectThreshold: "1", AlertAmount: "1", DuplicateWindowMinutes: -1}, field: "duplicate_window_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.s.ToConfig()

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.AutoCorrectThreshold.Equal(dec("1.00")))
	assert.Equal(t, 5*time.Minute, cfg.DuplicateTimeWindow)
	assert.Equal(t, 5, cfg.AlertThreshold.Count)
	assert.True(t, cfg.AlertThreshold.Amount.Equal(dec("100")))
}
