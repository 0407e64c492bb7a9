package optimizer

import (
	"context"

	"github.com/kosarica/price-comparator/internal/pricing"
)

// FactSource supplies price facts and discount intervals to the service.
// Implementations must be safe for concurrent use.
type FactSource interface {
	// LoadBasePrice returns the current base price of a listing.
	// The boolean is false when the listing has no base price.
	LoadBasePrice(ctx context.Context, productKey, storeKey string) (pricing.PriceFact, bool, error)

	// LoadDiscounts returns the raw discount intervals of a listing, possibly overlapping.
	LoadDiscounts(ctx context.Context, productKey, storeKey string) ([]pricing.DiscountInterval, error)

	// LoadAllStoresForProduct returns every priced listing whose name matches
	// productName case-insensitively, ordered by store key.
	LoadAllStoresForProduct(ctx context.Context, productName string) ([]StoreOffer, error)

	// ListDiscounted returns every listing with at least one discount interval,
	// ordered by product name then store key. Listings may lack a base price.
	ListDiscounted(ctx context.Context) ([]Listing, error)

	// IsHealthy reports whether the source can serve requests.
	IsHealthy(ctx context.Context) bool
}

// SnapshotLoader builds a complete snapshot from the backing store.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}
