package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildTimelineWithoutDiscounts verifies a window without discounts is a
// single undiscounted row.
func TestBuildTimelineWithoutDiscounts(t *testing.T) {
	w := Window{Start: day(t, "2025-01-01"), End: day(t, "2025-01-31")}

	got, err := BuildTimeline(dec("5.99"), "lidl", nil, w)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "2025-01-01", got[0].FromDate.Format(time.DateOnly))
	assert.Equal(t, "2025-01-31", got[0].ToDate.Format(time.DateOnly))
	assert.True(t, got[0].PercentOff.IsZero())
	assert.Equal(t, "5.99", got[0].EffectivePrice.StringFixed(2))
	assert.Equal(t, "lidl", got[0].StoreKey)
}

func TestBuildTimelineFillsGaps(t *testing.T) {
	normalized, err := Normalize([]DiscountInterval{
		discount(t, "2025-01-05", "2025-01-07", "10"),
		discount(t, "2025-01-10", "2025-01-12", "20"),
	})
	require.NoError(t, err)

	w := Window{Start: day(t, "2025-01-01"), End: day(t, "2025-01-15")}
	got, err := BuildTimeline(dec("10.00"), "lidl", normalized, w)
	require.NoError(t, err)

	want := []struct {
		from, to, pct, price string
	}{
		{"2025-01-01", "2025-01-04", "0", "10.00"},
		{"2025-01-05", "2025-01-07", "10", "9.00"},
		{"2025-01-08", "2025-01-09", "0", "10.00"},
		{"2025-01-10", "2025-01-12", "20", "8.00"},
		{"2025-01-13", "2025-01-15", "0", "10.00"},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.from, got[i].FromDate.Format(time.DateOnly), "row %d", i)
		assert.Equal(t, w.to, got[i].ToDate.Format(time.DateOnly), "row %d", i)
		assert.True(t, dec(w.pct).Equal(got[i].PercentOff), "row %d", i)
		assert.Equal(t, w.price, got[i].EffectivePrice.StringFixed(2), "row %d", i)
	}
}

func TestBuildTimelineOmitsEmptyEdges(t *testing.T) {
	normalized, err := Normalize([]DiscountInterval{
		discount(t, "2025-01-01", "2025-01-05", "10"),
	})
	require.NoError(t, err)

	w := Window{Start: day(t, "2025-01-01"), End: day(t, "2025-01-05")}
	got, err := BuildTimeline(dec("5.99"), "lidl", normalized, w)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "5.39", got[0].EffectivePrice.StringFixed(2))
}

func TestBuildTimelineClipsToWindow(t *testing.T) {
	normalized, err := Normalize([]DiscountInterval{
		discount(t, "2024-12-20", "2025-01-03", "10"),
		discount(t, "2025-01-08", "2025-02-10", "30"),
		discount(t, "2025-03-01", "2025-03-02", "50"),
	})
	require.NoError(t, err)

	w := Window{Start: day(t, "2025-01-01"), End: day(t, "2025-01-10")}
	got, err := BuildTimeline(dec("2.00"), "profi", normalized, w)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-01", got[0].FromDate.Format(time.DateOnly))
	assert.Equal(t, "2025-01-03", got[0].ToDate.Format(time.DateOnly))
	assert.Equal(t, "2025-01-04", got[1].FromDate.Format(time.DateOnly))
	assert.True(t, got[1].PercentOff.IsZero())
	assert.Equal(t, "2025-01-10", got[2].ToDate.Format(time.DateOnly))
	assert.Equal(t, "1.40", got[2].EffectivePrice.StringFixed(2))
}

func TestBuildTimelineRejectsInvertedWindow(t *testing.T) {
	w := Window{Start: day(t, "2025-01-10"), End: day(t, "2025-01-01")}
	_, err := BuildTimeline(dec("1.00"), "lidl", nil, w)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = BuildTimeline(dec("-1.00"), "lidl", nil, Window{Start: w.End, End: w.Start})
	assert.ErrorIs(t, err, ErrValidation)
}

// TestBuildTimelineCoverage verifies rows tile the window exactly: the first
// row starts on the window start, each row starts the day after the previous
// one ends, and the last row ends on the window end.
func TestBuildTimelineCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 100; round++ {
		raw := randomDiscounts(rng, rng.Intn(8))
		normalized, err := Normalize(raw)
		require.NoError(t, err)

		start := AddDays(day(t, "2024-12-25"), rng.Intn(20))
		w := Window{Start: start, End: AddDays(start, rng.Intn(50))}

		got, err := BuildTimeline(dec("3.49"), "kaufland", normalized, w)
		require.NoError(t, err)
		require.NotEmpty(t, got)

		assert.True(t, got[0].FromDate.Equal(w.Start), "round %d", round)
		assert.True(t, got[len(got)-1].ToDate.Equal(w.End), "round %d", round)

		covered := 0
		for i, row := range got {
			assert.False(t, row.FromDate.After(row.ToDate), "round %d row %d inverted", round, i)
			if i > 0 {
				assert.True(t, AddDays(got[i-1].ToDate, 1).Equal(row.FromDate), "round %d row %d not contiguous", round, i)
			}
			covered += DaysBetween(row.FromDate, row.ToDate) + 1

			for d := row.FromDate; !d.After(row.ToDate); d = AddDays(d, 1) {
				assert.True(t, row.PercentOff.Equal(ActivePercent(normalized, d)))
			}
		}
		assert.Equal(t, w.Days(), covered)
	}
}
