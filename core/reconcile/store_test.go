package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store used by the package tests.
type memStore struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	sales  map[string]LocalSale
	flags  map[string]SaleFlag
	order  []string
	audit  []AuditEntry
	links  map[string][]PlatformLink
	health map[string]SyncHealth

	reports       map[string]Report
	reportOrder   []string
	discrepancies map[string]Discrepancy
	discOrder     []string

	insertErr   map[string]error // keyed by platform order id
	localErr    error
	persistErr  error
	logErr      error
	reportReads atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{
		sales:         make(map[string]LocalSale),
		flags:         make(map[string]SaleFlag),
		links:         make(map[string][]PlatformLink),
		health:        make(map[string]SyncHealth),
		reports:       make(map[string]Report),
		discrepancies: make(map[string]Discrepancy),
		insertErr:     make(map[string]error),
	}
}

func (m *memStore) link(eventID string, platforms ...string) {
	for _, p := range platforms {
		m.links[eventID] = append(m.links[eventID], PlatformLink{EventID: eventID, Platform: p, ExternalEventID: "ext-" + p})
	}
}

func (m *memStore) seed(sales ...LocalSale) {
	for _, s := range sales {
		m.sales[s.ID] = s
		m.order = append(m.order, s.ID)
	}
}

func (m *memStore) sale(id string) (LocalSale, SaleFlag, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[id]
	return s, m.flags[id], ok
}

func (m *memStore) saleByOrder(platform, orderID string) (LocalSale, SaleFlag, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		s := m.sales[id]
		if s.Platform == platform && s.PlatformOrderID == orderID {
			return s, m.flags[id], true
		}
	}
	return LocalSale{}, "", false
}

func (m *memStore) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.audit))
	for _, a := range m.audit {
		actions = append(actions, a.Action)
	}
	sort.Strings(actions)
	return actions
}

func (m *memStore) FetchLocalSales(_ context.Context, eventID, platform string) ([]LocalSale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.localErr != nil {
		return nil, m.localErr
	}
	var out []LocalSale
	for _, id := range m.order {
		s := m.sales[id]
		if s.EventID == eventID && s.Platform == platform {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) InsertSale(_ context.Context, sale LocalSale, flag SaleFlag) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.insertErr[sale.PlatformOrderID]; err != nil {
		return false, err
	}
	for _, id := range m.order {
		s := m.sales[id]
		if s.Platform == sale.Platform && s.PlatformOrderID == sale.PlatformOrderID {
			return false, nil
		}
	}
	m.sales[sale.ID] = sale
	m.flags[sale.ID] = flag
	m.order = append(m.order, sale.ID)
	return true, nil
}

func (m *memStore) UpdateSaleAmount(_ context.Context, saleID string, amount decimal.Decimal, flag SaleFlag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[saleID]
	if !ok {
		return fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	s.TotalAmount = amount
	m.sales[saleID] = s
	m.flags[saleID] = flag
	return nil
}

func (m *memStore) DeleteSale(_ context.Context, saleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[saleID]; !ok {
		return fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	delete(m.sales, saleID)
	delete(m.flags, saleID)
	for i, id := range m.order {
		if id == saleID {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) LogAction(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logErr != nil {
		return m.logErr
	}
	m.audit = append(m.audit, entry)
	return nil
}

func (m *memStore) Atomic(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	sales := make(map[string]LocalSale, len(m.sales))
	for k, v := range m.sales {
		sales[k] = v
	}
	flags := make(map[string]SaleFlag, len(m.flags))
	for k, v := range m.flags {
		flags[k] = v
	}
	order := append([]string(nil), m.order...)
	audit := append([]AuditEntry(nil), m.audit...)
	discrepancies := make(map[string]Discrepancy, len(m.discrepancies))
	for k, v := range m.discrepancies {
		discrepancies[k] = v
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.sales, m.flags, m.order, m.audit, m.discrepancies = sales, flags, order, audit, discrepancies
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) PersistReport(_ context.Context, report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persistErr != nil {
		return m.persistErr
	}
	if _, ok := m.reports[report.ID]; !ok {
		m.reportOrder = append(m.reportOrder, report.ID)
	}
	m.reports[report.ID] = *report
	for _, d := range report.Discrepancies {
		if _, ok := m.discrepancies[d.ID]; !ok {
			m.discOrder = append(m.discOrder, d.ID)
		}
		m.discrepancies[d.ID] = d
	}
	return nil
}

func (m *memStore) GetDiscrepancy(_ context.Context, id string) (*Discrepancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.discrepancies[id]
	if !ok {
		return nil, fmt.Errorf("discrepancy %s: %w", id, ErrNotFound)
	}
	return &d, nil
}

func (m *memStore) UpdateDiscrepancy(_ context.Context, d Discrepancy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.discrepancies[d.ID]; !ok {
		return fmt.Errorf("discrepancy %s: %w", d.ID, ErrNotFound)
	}
	m.discrepancies[d.ID] = d
	return nil
}

func (m *memStore) FetchUnresolvedDiscrepancies(_ context.Context, eventID, platform string) ([]Discrepancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Discrepancy
	for _, id := range m.discOrder {
		d := m.discrepancies[id]
		if d.EventID != eventID || (platform != "" && d.Platform != platform) {
			continue
		}
		if d.Resolution == ResolutionNone || d.Resolution == ResolutionManualReview {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) FetchHistory(_ context.Context, eventID string, limit int) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Report
	for i := len(m.reportOrder) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.reports[m.reportOrder[i]]
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) FetchReportsSince(_ context.Context, eventID string, since time.Time) ([]Report, error) {
	m.reportReads.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Report
	for _, id := range m.reportOrder {
		r := m.reports[id]
		if r.EventID == eventID && !r.StartTime.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) UpdateEventHealthStatus(_ context.Context, eventID, platform string, health SyncHealth, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health[eventID+"/"+platform] = health
	return nil
}

func (m *memStore) FetchEventPlatforms(_ context.Context, eventID string) ([]PlatformLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlatformLink(nil), m.links[eventID]...), nil
}

// fakeFetcher serves platform sales from memory.
type fakeFetcher struct {
	sales map[string][]PlatformSale
	err   error
}

func (f *fakeFetcher) FetchPlatformSales(_ context.Context, link PlatformLink) ([]PlatformSale, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sales[link.Platform], nil
}

// recordingNotifier captures alerts.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (n *recordingNotifier) NotifyReconciliationAlert(_ context.Context, alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

// seqIDs returns a goroutine safe generator of prefix-1, prefix-2, ...
func seqIDs(prefix string) IDGenerator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var errBoom = errors.New("boom")
