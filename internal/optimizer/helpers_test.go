package optimizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := pricing.ParseDay(s)
	require.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var storeDisplayNames = map[string]string{
	"lidl":     "Lidl",
	"kaufland": "Kaufland",
	"profi":    "Profi",
}

type fixtureBuilder struct {
	t    *testing.T
	snap *Snapshot
}

func newFixtureBuilder(t *testing.T) *fixtureBuilder {
	return &fixtureBuilder{t: t, snap: NewSnapshot()}
}

func (b *fixtureBuilder) listing(key, name, store, brand, qty, unit string) *fixtureBuilder {
	b.snap.AddListing(Listing{
		Product: ProductInfo{
			Key:             key,
			Name:            name,
			Brand:           brand,
			Category:        "lactate",
			PackageQuantity: dec(qty),
			PackageUnit:     unit,
		},
		StoreKey:  store,
		StoreName: storeDisplayNames[store],
	})
	return b
}

func (b *fixtureBuilder) price(key, store, price, asOf string) *fixtureBuilder {
	b.snap.AddPrice(pricing.PriceFact{
		ProductKey: key,
		StoreKey:   store,
		BasePrice:  dec(price),
		AsOf:       day(b.t, asOf),
	})
	return b
}

func (b *fixtureBuilder) discount(key, store, from, to, pct string) *fixtureBuilder {
	b.snap.AddDiscount(pricing.DiscountInterval{
		ProductKey: key,
		StoreKey:   store,
		FromDate:   day(b.t, from),
		ToDate:     day(b.t, to),
		PercentOff: dec(pct),
	})
	return b
}

func (b *fixtureBuilder) build() *Snapshot {
	return b.snap.Seal()
}

// marketFixture is a small three-store market used across service tests.
//
//	lapte zuzu  lidl 9.90 (20% Jan 1-7), kaufland 10.10 2l (10% Jan 3-10), profi 9.50
//	paine alba  lidl 3.00, profi 2.50
//	oua         kaufland 12.00 (25% Jan 1-31)
//	iaurt       lidl, discounted 50% Jan 1-10 but never priced
func marketFixture(t *testing.T) *Snapshot {
	return newFixtureBuilder(t).
		listing("P001", "Lapte Zuzu", "lidl", "Zuzu", "1", "l").
		listing("K001", "Lapte Zuzu", "kaufland", "Zuzu", "2", "l").
		listing("R001", "Lapte Zuzu", "profi", "Zuzu", "1", "l").
		price("P001", "lidl", "9.90", "2024-12-30").
		price("K001", "kaufland", "10.10", "2024-12-30").
		price("R001", "profi", "9.50", "2024-12-30").
		discount("P001", "lidl", "2025-01-01", "2025-01-07", "20").
		discount("K001", "kaufland", "2025-01-03", "2025-01-10", "10").
		listing("P010", "Paine Alba", "lidl", "Vel Pitar", "0.5", "kg").
		listing("R010", "Paine Alba", "profi", "Vel Pitar", "0.5", "kg").
		price("P010", "lidl", "3.00", "2024-12-30").
		price("R010", "profi", "2.50", "2024-12-30").
		listing("K020", "Oua", "kaufland", "", "10", "buc").
		price("K020", "kaufland", "12.00", "2024-12-30").
		discount("K020", "kaufland", "2025-01-01", "2025-01-31", "25").
		listing("P099", "Iaurt", "lidl", "Danone", "0.4", "kg").
		discount("P099", "lidl", "2025-01-01", "2025-01-10", "50").
		build()
}

// mockLoader is a SnapshotLoader that counts calls and can block or fail.
type mockLoader struct {
	mu      sync.Mutex
	snap    *Snapshot
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (m *mockLoader) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	m.calls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

func (m *mockLoader) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// failingSource is a FactSource whose every lookup fails.
type failingSource struct{}

var errSourceDown = errors.New("source down")

func (failingSource) LoadBasePrice(context.Context, string, string) (pricing.PriceFact, bool, error) {
	return pricing.PriceFact{}, false, errSourceDown
}

func (failingSource) LoadDiscounts(context.Context, string, string) ([]pricing.DiscountInterval, error) {
	return nil, errSourceDown
}

func (failingSource) LoadAllStoresForProduct(context.Context, string) ([]StoreOffer, error) {
	return nil, errSourceDown
}

func (failingSource) ListDiscounted(context.Context) ([]Listing, error) {
	return nil, errSourceDown
}

func (failingSource) IsHealthy(context.Context) bool { return false }
