package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertThreshold decides when a finished run notifies operators.
type AlertThreshold struct {
	// Count triggers when more discrepancies than this were found.
	Count int

	// Amount triggers when the revenue gap exceeds this value.
	Amount decimal.Decimal
}

// Config tunes detection, resolution and alerting. It is passed explicitly
// on every call so two runs never share hidden state.
type Config struct {
	// AutoCorrectThreshold is the amount gap above which a mismatch is reported.
	// Only gaps strictly below it are overwritten automatically.
	AutoCorrectThreshold decimal.Decimal

	// DuplicateTimeWindow is the maximum gap between two purchases of one group
	// for the later one to be flagged as a duplicate.
	DuplicateTimeWindow time.Duration

	AlertThreshold AlertThreshold

	// GroupKey buckets sales for duplicate detection. Nil uses DefaultGroupKey.
	GroupKey GroupKeyFunc
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		AutoCorrectThreshold: decimal.NewFromInt(1),
		DuplicateTimeWindow:  5 * time.Minute,
		AlertThreshold: AlertThreshold{
			Count:  5,
			Amount: decimal.NewFromInt(100),
		},
		GroupKey: DefaultGroupKey,
	}
}

func (c Config) groupKey() GroupKeyFunc {
	if c.GroupKey == nil {
		return DefaultGroupKey
	}
	return c.GroupKey
}

// Settings is the configuration file form of Config.
type Settings struct {
	AutoCorrectThreshold   string `mapstructure:"auto_correct_threshold" default:"1.00"`
	DuplicateWindowMinutes int    `mapstructure:"duplicate_window_minutes" default:"5"`
	AlertCount             int    `mapstructure:"alert_count" default:"5"`
	AlertAmount            string `mapstructure:"alert_amount" default:"100.00"`
	Concurrency            int    `mapstructure:"concurrency" default:"4"`
	StatsCacheSeconds      int    `mapstructure:"stats_cache_seconds" default:"60"`
	StatsWindowDays        int    `mapstructure:"stats_window_days" default:"30"`
	LockTTLSeconds         int    `mapstructure:"lock_ttl_seconds" default:"300"`
}

// ToConfig parses the settings into a Config.
func (s Settings) ToConfig() (Config, error) {
	cfg := DefaultConfig()

	threshold, err := decimal.NewFromString(s.AutoCorrectThreshold)
	if err != nil {
		return Config{}, &ValidationError{Field: "auto_correct_threshold", Reason: fmt.Sprintf("invalid amount %q", s.AutoCorrectThreshold)}
	}
	if threshold.IsNegative() {
		return Config{}, &ValidationError{Field: "auto_correct_threshold", Reason: "must not be negative"}
	}

	alertAmount, err := decimal.NewFromString(s.AlertAmount)
	if err != nil {
		return Config{}, &ValidationError{Field: "alert_amount", Reason: fmt.Sprintf("invalid amount %q", s.AlertAmount)}
	}

	if s.DuplicateWindowMinutes < 0 {
		return Config{}, &ValidationError{Field: "duplicate_window_minutes", Reason: "must not be negative"}
	}

	cfg.AutoCorrectThreshold = threshold
	cfg.DuplicateTimeWindow = time.Duration(s.DuplicateWindowMinutes) * time.Minute
	cfg.AlertThreshold = AlertThreshold{Count: s.AlertCount, Amount: alertAmount}
	return cfg, nil
}
