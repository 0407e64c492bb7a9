package optimizer

import (
	"context"
	"sort"
	"strings"

	"github.com/kosarica/price-comparator/internal/pricing"
)

type listingKey struct {
	product string
	store   string
}

type listingEntry struct {
	listing   Listing
	fact      *pricing.PriceFact
	discounts []pricing.DiscountInterval
}

// Snapshot is an in-memory copy of every listing, base price and discount.
// It is built once, sealed, and then only read, so a sealed Snapshot is
// safe for concurrent use and can serve as a FactSource on its own.
type Snapshot struct {
	entries map[listingKey]*listingEntry
	byName  map[string][]listingKey
	sealed  bool

	discountCount int
}

// NewSnapshot creates an empty snapshot ready for population.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		entries: make(map[listingKey]*listingEntry),
		byName:  make(map[string][]listingKey),
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *Snapshot) entry(productKey, storeKey string) *listingEntry {
	k := listingKey{product: productKey, store: storeKey}
	e, ok := s.entries[k]
	if !ok {
		e = &listingEntry{listing: Listing{Product: ProductInfo{Key: productKey}, StoreKey: storeKey}}
		s.entries[k] = e
	}
	return e
}

// AddListing registers product details for a listing. Later calls overwrite
// details but keep prices and discounts already added.
func (s *Snapshot) AddListing(l Listing) {
	if s.sealed {
		panic("optimizer: AddListing on sealed snapshot")
	}
	e := s.entry(l.Product.Key, l.StoreKey)
	e.listing = l
}

// AddPrice records a base price. When a listing receives several prices the
// most recent AsOf wins.
func (s *Snapshot) AddPrice(f pricing.PriceFact) {
	if s.sealed {
		panic("optimizer: AddPrice on sealed snapshot")
	}
	e := s.entry(f.ProductKey, f.StoreKey)
	if e.fact == nil || f.AsOf.After(e.fact.AsOf) {
		fact := f
		e.fact = &fact
	}
}

// AddDiscount appends a raw discount interval to its listing.
func (s *Snapshot) AddDiscount(d pricing.DiscountInterval) {
	if s.sealed {
		panic("optimizer: AddDiscount on sealed snapshot")
	}
	e := s.entry(d.ProductKey, d.StoreKey)
	e.discounts = append(e.discounts, d)
	s.discountCount++
}

// Seal builds the name index and freezes the snapshot. It returns s.
func (s *Snapshot) Seal() *Snapshot {
	if s.sealed {
		return s
	}
	for k, e := range s.entries {
		n := nameKey(e.listing.Product.Name)
		if n == "" {
			continue
		}
		s.byName[n] = append(s.byName[n], k)
	}
	for _, keys := range s.byName {
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].store != keys[j].store {
				return keys[i].store < keys[j].store
			}
			return keys[i].product < keys[j].product
		})
	}
	for _, e := range s.entries {
		sort.SliceStable(e.discounts, func(i, j int) bool {
			return e.discounts[i].FromDate.Before(e.discounts[j].FromDate)
		})
	}
	s.sealed = true
	return s
}

// Stats returns the number of listings, priced listings and discount intervals.
func (s *Snapshot) Stats() (listings, offers, discounts int) {
	for _, e := range s.entries {
		if e.fact != nil {
			offers++
		}
	}
	return len(s.entries), offers, s.discountCount
}

// OrphanDiscounts counts listings that carry discounts but no base price.
func (s *Snapshot) OrphanDiscounts() int {
	n := 0
	for _, e := range s.entries {
		if e.fact == nil && len(e.discounts) > 0 {
			n++
		}
	}
	return n
}

// LoadBasePrice implements FactSource.
func (s *Snapshot) LoadBasePrice(_ context.Context, productKey, storeKey string) (pricing.PriceFact, bool, error) {
	e, ok := s.entries[listingKey{product: productKey, store: storeKey}]
	if !ok || e.fact == nil {
		return pricing.PriceFact{}, false, nil
	}
	return *e.fact, true, nil
}

// LoadDiscounts implements FactSource. The returned slice is a copy.
func (s *Snapshot) LoadDiscounts(_ context.Context, productKey, storeKey string) ([]pricing.DiscountInterval, error) {
	e, ok := s.entries[listingKey{product: productKey, store: storeKey}]
	if !ok || len(e.discounts) == 0 {
		return nil, nil
	}
	out := make([]pricing.DiscountInterval, len(e.discounts))
	copy(out, e.discounts)
	return out, nil
}

// LoadAllStoresForProduct implements FactSource.
func (s *Snapshot) LoadAllStoresForProduct(_ context.Context, productName string) ([]StoreOffer, error) {
	keys := s.byName[nameKey(productName)]
	offers := make([]StoreOffer, 0, len(keys))
	for _, k := range keys {
		e := s.entries[k]
		if e.fact == nil {
			continue
		}
		offers = append(offers, StoreOffer{Listing: e.listing, Fact: *e.fact})
	}
	return offers, nil
}

// ListDiscounted implements FactSource.
func (s *Snapshot) ListDiscounted(_ context.Context) ([]Listing, error) {
	out := make([]Listing, 0)
	for _, e := range s.entries {
		if len(e.discounts) > 0 {
			out = append(out, e.listing)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := nameKey(out[i].Product.Name), nameKey(out[j].Product.Name)
		if ni != nj {
			return ni < nj
		}
		if out[i].StoreKey != out[j].StoreKey {
			return out[i].StoreKey < out[j].StoreKey
		}
		return out[i].Product.Key < out[j].Product.Key
	})
	return out, nil
}

// IsHealthy implements FactSource. A sealed snapshot is always healthy.
func (s *Snapshot) IsHealthy(context.Context) bool {
	return s.sealed
}
