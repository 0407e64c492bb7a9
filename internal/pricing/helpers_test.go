package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discount(t *testing.T, from, to, pct string) DiscountInterval {
	t.Helper()
	return DiscountInterval{
		ProductKey: "P001",
		StoreKey:   "lidl",
		FromDate:   day(t, from),
		ToDate:     day(t, to),
		PercentOff: dec(pct),
	}
}

type span struct {
	from, to, pct string
}

func requireSpans(t *testing.T, want []span, got []NormalizedInterval) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.from, got[i].FromDate.Format(time.DateOnly), "span %d from", i)
		assert.Equal(t, w.to, got[i].ToDate.Format(time.DateOnly), "span %d to", i)
		assert.True(t, dec(w.pct).Equal(got[i].PercentOff), "span %d: want %s%%, got %s%%", i, w.pct, got[i].PercentOff)
	}
}
