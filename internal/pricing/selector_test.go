package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(store, price, pct string) Quote {
	return Quote{
		ProductKey:     "P001",
		StoreKey:       store,
		EffectivePrice: dec(price),
		PercentOff:     dec(pct),
	}
}

// TestQuoteOnOverlappingDiscounts prices a product on a day where two
// campaigns overlap.
func TestQuoteOnOverlappingDiscounts(t *testing.T) {
	fact := PriceFact{ProductKey: "P001", StoreKey: "lidl", BasePrice: dec("5.99")}
	discounts := []DiscountInterval{
		discount(t, "2025-01-01", "2025-01-05", "10"),
		discount(t, "2025-01-03", "2025-01-10", "20"),
	}

	q, err := QuoteOn(fact, discounts, day(t, "2025-01-04"))
	require.NoError(t, err)
	assert.Equal(t, "4.79", q.EffectivePrice.StringFixed(2))
	assert.True(t, q.PercentOff.Equal(dec("20")))

	q, err = QuoteOn(fact, discounts, day(t, "2025-01-02"))
	require.NoError(t, err)
	assert.Equal(t, "5.39", q.EffectivePrice.StringFixed(2))

	q, err = QuoteOn(fact, discounts, day(t, "2025-01-11"))
	require.NoError(t, err)
	assert.Equal(t, "5.99", q.EffectivePrice.StringFixed(2))
	assert.True(t, q.PercentOff.IsZero())
}

func TestQuoteOnRejectsForeignDiscount(t *testing.T) {
	fact := PriceFact{ProductKey: "P001", StoreKey: "kaufland", BasePrice: dec("5.99")}
	_, err := QuoteOn(fact, []DiscountInterval{discount(t, "2025-01-01", "2025-01-05", "10")}, day(t, "2025-01-02"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActivePercentOutsideSpans(t *testing.T) {
	normalized, err := Normalize([]DiscountInterval{discount(t, "2025-01-05", "2025-01-06", "10")})
	require.NoError(t, err)

	assert.True(t, ActivePercent(normalized, day(t, "2025-01-04")).IsZero())
	assert.True(t, ActivePercent(normalized, day(t, "2025-01-05")).Equal(dec("10")))
	assert.True(t, ActivePercent(normalized, day(t, "2025-01-06")).Equal(dec("10")))
	assert.True(t, ActivePercent(normalized, day(t, "2025-01-07")).IsZero())
	assert.True(t, ActivePercent(nil, day(t, "2025-01-07")).IsZero())
}

func TestSelectBestMilk(t *testing.T) {
	best, ok := SelectBest([]Quote{
		quote("kaufland", "6.10", "0"),
		quote("lidl", "5.89", "0"),
		quote("profi", "6.25", "0"),
	})
	require.True(t, ok)
	assert.Equal(t, "lidl", best.StoreKey)
	assert.Equal(t, "5.89", best.EffectivePrice.StringFixed(2))
}

func TestSelectBestEmpty(t *testing.T) {
	_, ok := SelectBest(nil)
	assert.False(t, ok)
}

func TestSelectBestTieKeepsFirst(t *testing.T) {
	best, ok := SelectBest([]Quote{
		quote("kaufland", "5.89", "0"),
		quote("lidl", "5.89", "5"),
	})
	require.True(t, ok)
	assert.Equal(t, "kaufland", best.StoreKey)
}

func TestRankDiscounts(t *testing.T) {
	in := []Quote{
		quote("a", "1.00", "10"),
		quote("b", "1.00", "25"),
		quote("c", "1.00", "10"),
		quote("d", "1.00", "5"),
	}
	ranked := RankDiscounts(in)

	stores := make([]string, len(ranked))
	for i, q := range ranked {
		stores[i] = q.StoreKey
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, stores)
	assert.Equal(t, "a", in[0].StoreKey, "input must not be reordered")
}

// TestSelectionOrderIndependent verifies the winning price and the ranked
// percentages do not depend on input order.
func TestSelectionOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	quotes := make([]Quote, 12)
	for i := range quotes {
		quotes[i] = Quote{
			StoreKey:       string(rune('a' + i)),
			EffectivePrice: decimal.NewFromInt(int64(100 + rng.Intn(50))).Shift(-2),
			PercentOff:     decimal.NewFromInt(int64(rng.Intn(5) * 10)),
		}
	}

	wantBest, _ := SelectBest(quotes)
	wantRank := RankDiscounts(quotes)

	for i := 0; i < 20; i++ {
		shuffled := make([]Quote, len(quotes))
		copy(shuffled, quotes)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		best, ok := SelectBest(shuffled)
		require.True(t, ok)
		assert.True(t, wantBest.EffectivePrice.Equal(best.EffectivePrice))

		rank := RankDiscounts(shuffled)
		for j := range rank {
			assert.True(t, wantRank[j].PercentOff.Equal(rank[j].PercentOff))
		}
	}
}

func TestIsSatisfied(t *testing.T) {
	target := dec("5.00")

	assert.False(t, IsSatisfied(target, []Quote{quote("lidl", "5.89", "0"), quote("kaufland", "6.10", "0")}))
	assert.True(t, IsSatisfied(target, []Quote{quote("lidl", "5.89", "0"), quote("profi", "4.99", "0")}))
	assert.True(t, IsSatisfied(target, []Quote{quote("lidl", "5.00", "0")}), "equal to target satisfies")
	assert.False(t, IsSatisfied(target, nil))
}
