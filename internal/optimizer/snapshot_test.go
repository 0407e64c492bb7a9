package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotLatestPriceWins(t *testing.T) {
	snap := newFixtureBuilder(t).
		listing("P001", "Lapte", "lidl", "", "1", "l").
		price("P001", "lidl", "9.90", "2025-01-02").
		price("P001", "lidl", "8.50", "2024-12-01").
		price("P001", "lidl", "10.20", "2025-01-05").
		build()

	fact, ok, err := snap.LoadBasePrice(context.Background(), "P001", "lidl")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, dec("10.20").Equal(fact.BasePrice))
}

func TestSnapshotLoadAllStoresForProduct(t *testing.T) {
	ctx := context.Background()
	snap := marketFixture(t)

	offers, err := snap.LoadAllStoresForProduct(ctx, "  lapte ZUZU ")
	require.NoError(t, err)
	require.Len(t, offers, 3)
	assert.Equal(t, "kaufland", offers[0].StoreKey)
	assert.Equal(t, "lidl", offers[1].StoreKey)
	assert.Equal(t, "profi", offers[2].StoreKey)
	assert.Equal(t, "Kaufland", offers[0].StoreName)

	// A listing with discounts but no price is not an offer.
	offers, err = snap.LoadAllStoresForProduct(ctx, "iaurt")
	require.NoError(t, err)
	assert.Empty(t, offers)

	offers, err = snap.LoadAllStoresForProduct(ctx, "branza")
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestSnapshotListDiscounted(t *testing.T) {
	snap := marketFixture(t)

	listings, err := snap.ListDiscounted(context.Background())
	require.NoError(t, err)

	var got []string
	for _, l := range listings {
		got = append(got, l.Product.Key+"@"+l.StoreKey)
	}
	assert.Equal(t, []string{"P099@lidl", "K001@kaufland", "P001@lidl", "K020@kaufland"}, got)
	assert.Equal(t, 1, snap.OrphanDiscounts())
}

func TestSnapshotStats(t *testing.T) {
	listings, offers, discounts := marketFixture(t).Stats()
	assert.Equal(t, 7, listings)
	assert.Equal(t, 6, offers)
	assert.Equal(t, 4, discounts)
}

func TestSnapshotLoadDiscountsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	snap := marketFixture(t)

	first, err := snap.LoadDiscounts(ctx, "P001", "lidl")
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].PercentOff = dec("99")

	second, err := snap.LoadDiscounts(ctx, "P001", "lidl")
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(second[0].PercentOff))
}

func TestSealedSnapshotRejectsWrites(t *testing.T) {
	snap := marketFixture(t)
	assert.Panics(t, func() {
		snap.AddListing(Listing{StoreKey: "lidl"})
	})
}
