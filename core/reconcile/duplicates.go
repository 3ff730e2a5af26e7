package reconcile

import (
	"sort"
	"strings"
	"time"
)

// UnknownCustomer is the group bucket for sales without an email address.
// Every such sale of the same amount lands in one bucket, so walk-in sales
// bought close together can be flagged as duplicates of each other.
const UnknownCustomer = "unknown"

// GroupKeyFunc returns the bucket a sale is compared within for duplicate detection.
type GroupKeyFunc func(LocalSale) string

// DefaultGroupKey groups by lower-cased customer email and amount.
func DefaultGroupKey(s LocalSale) string {
	email := strings.ToLower(strings.TrimSpace(s.CustomerEmail))
	if email == "" {
		email = UnknownCustomer
	}
	return email + "|" + s.TotalAmount.String()
}

// DuplicateMatch pairs a suspected duplicate with the sale it repeats.
type DuplicateMatch struct {
	Sale     LocalSale
	Previous LocalSale
	Gap      time.Duration
}

// FindDuplicates groups sales by key, orders each group by purchase time and
// flags every sale bought less than window after its predecessor in the group.
// Groups are visited in order of first appearance so output is deterministic.
func FindDuplicates(sales []LocalSale, window time.Duration, key GroupKeyFunc) []DuplicateMatch {
	if window <= 0 || len(sales) < 2 {
		return nil
	}
	if key == nil {
		key = DefaultGroupKey
	}

	groups := make(map[string][]LocalSale)
	order := make([]string, 0)
	for _, sale := range sales {
		k := key(sale)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], sale)
	}

	var matches []DuplicateMatch
	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PurchaseDate.Before(group[j].PurchaseDate)
		})

		for i := 1; i < len(group); i++ {
			gap := group[i].PurchaseDate.Sub(group[i-1].PurchaseDate)
			if gap < window {
				matches = append(matches, DuplicateMatch{
					Sale:     group[i],
					Previous: group[i-1],
					Gap:      gap,
				})
			}
		}
	}

	return matches
}
