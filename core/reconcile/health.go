package reconcile

// CalculateSyncHealth grades a run from its totals. The discrepancy rate is
// found over local sales and the revenue rate is the revenue gap over
// platform revenue. A zero denominator yields a zero rate.
func CalculateSyncHealth(r Report) SyncHealth {
	discrepancyRate := 0.0
	if r.TotalLocalSales > 0 {
		discrepancyRate = float64(r.DiscrepanciesFound) / float64(r.TotalLocalSales)
	}

	revenueRate := 0.0
	if r.TotalPlatformRevenue.IsPositive() {
		revenueRate = r.RevenueDifference().Div(r.TotalPlatformRevenue).InexactFloat64()
	}

	switch {
	case discrepancyRate > 0.10 || revenueRate > 0.05:
		return HealthCritical
	case discrepancyRate > 0.05 || revenueRate > 0.02:
		return HealthWarning
	default:
		return HealthHealthy
	}
}

// HealthPoint is one entry of a health trend.
type HealthPoint struct {
	ReportID      string     `json:"report_id"`
	Platform      string     `json:"platform"`
	Health        SyncHealth `json:"health"`
	Discrepancies int        `json:"discrepancies"`
	StartTime     string     `json:"start_time"`
}

// PlatformStats aggregates the reports of one platform.
type PlatformStats struct {
	Reports               int     `json:"reports"`
	DiscrepanciesFound    int     `json:"discrepancies_found"`
	DiscrepanciesResolved int     `json:"discrepancies_resolved"`
	ResolutionRate        float64 `json:"resolution_rate"`
}

// Stats summarizes a window of reports.
type Stats struct {
	TotalReports         int                      `json:"total_reports"`
	AverageDiscrepancies float64                  `json:"average_discrepancies"`
	ResolutionRate       float64                  `json:"resolution_rate"`
	HealthTrend          []HealthPoint            `json:"health_trend"`
	PlatformBreakdown    map[string]PlatformStats `json:"platform_breakdown"`
}

// BuildStats aggregates reports. The health trend keeps input order. The
// resolution rate is 0 for no reports and 1 when reports found nothing.
func BuildStats(reports []Report) Stats {
	stats := Stats{
		TotalReports:      len(reports),
		HealthTrend:       make([]HealthPoint, 0, len(reports)),
		PlatformBreakdown: make(map[string]PlatformStats),
	}
	if len(reports) == 0 {
		return stats
	}

	found, resolved := 0, 0
	for _, r := range reports {
		found += r.DiscrepanciesFound
		resolved += r.DiscrepanciesResolved

		stats.HealthTrend = append(stats.HealthTrend, HealthPoint{
			ReportID:      r.ID,
			Platform:      r.Platform,
			Health:        r.SyncHealth,
			Discrepancies: r.DiscrepanciesFound,
			StartTime:     r.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})

		ps := stats.PlatformBreakdown[r.Platform]
		ps.Reports++
		ps.DiscrepanciesFound += r.DiscrepanciesFound
		ps.DiscrepanciesResolved += r.DiscrepanciesResolved
		stats.PlatformBreakdown[r.Platform] = ps
	}

	for platform, ps := range stats.PlatformBreakdown {
		ps.ResolutionRate = resolutionRate(ps.DiscrepanciesFound, ps.DiscrepanciesResolved)
		stats.PlatformBreakdown[platform] = ps
	}

	stats.AverageDiscrepancies = float64(found) / float64(len(reports))
	stats.ResolutionRate = resolutionRate(found, resolved)
	return stats
}

func resolutionRate(found, resolved int) float64 {
	if found == 0 {
		return 1
	}
	return float64(resolved) / float64(found)
}
