package pricing

import (
	"container/heap"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// boundary is a sweep-line event: a discount value entering or leaving the
// active set on a given day.
type boundary struct {
	day   time.Time
	pct   decimal.Decimal
	start bool
}

// Normalize merges raw discount intervals for a single product and store into
// disjoint spans carrying the maximum active percentage. Spans with no active
// discount are omitted. Runs in O(n log n) over the number of intervals.
func Normalize(raw []DiscountInterval) ([]NormalizedInterval, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	events := make([]boundary, 0, 2*len(raw))
	product, store := raw[0].ProductKey, raw[0].StoreKey

	for i, d := range raw {
		if d.ProductKey != product || d.StoreKey != store {
			return nil, &ValidationError{Field: "discounts", Index: i, Reason: "mixes product or store keys"}
		}
		from, to := Day(d.FromDate), Day(d.ToDate)
		if from.After(to) {
			return nil, &ValidationError{Field: "discounts", Index: i, Reason: "fromDate is after toDate"}
		}
		if !validPercent(d.PercentOff) {
			return nil, &ValidationError{Field: "discounts", Index: i, Reason: "percentOff must be within [0,100]"}
		}
		if d.PercentOff.IsZero() {
			continue
		}
		events = append(events,
			boundary{day: from, pct: d.PercentOff, start: true},
			boundary{day: AddDays(to, 1), pct: d.PercentOff},
		)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].day.Before(events[j].day)
	})

	active := newActiveSet()
	var (
		out      []NormalizedInterval
		current  = decimal.Zero
		openFrom time.Time
	)

	for i := 0; i < len(events); {
		day := events[i].day
		for ; i < len(events) && events[i].day.Equal(day); i++ {
			if events[i].start {
				active.add(events[i].pct)
			} else {
				active.remove(events[i].pct)
			}
		}

		next := active.max()
		if next.Equal(current) {
			continue
		}
		if current.IsPositive() {
			out = append(out, NormalizedInterval{
				FromDate:   openFrom,
				ToDate:     AddDays(day, -1),
				PercentOff: current,
			})
		}
		current = next
		openFrom = day
	}

	return out, nil
}

// NormalizeRanges re-normalizes already merged spans. Normalized input is a
// fixed point.
func NormalizeRanges(spans []NormalizedInterval) ([]NormalizedInterval, error) {
	raw := make([]DiscountInterval, len(spans))
	for i, s := range spans {
		raw[i] = DiscountInterval{FromDate: s.FromDate, ToDate: s.ToDate, PercentOff: s.PercentOff}
	}
	return Normalize(raw)
}

// activeSet is a max-heap of discount percentages with lazy deletion.
type activeSet struct {
	h       percentHeap
	removed map[string]int
}

func newActiveSet() *activeSet {
	return &activeSet{removed: make(map[string]int)}
}

func (s *activeSet) add(p decimal.Decimal) {
	heap.Push(&s.h, p)
}

func (s *activeSet) remove(p decimal.Decimal) {
	s.removed[p.String()]++
}

func (s *activeSet) max() decimal.Decimal {
	for s.h.Len() > 0 {
		top := s.h[0]
		key := top.String()
		if s.removed[key] == 0 {
			return top
		}
		s.removed[key]--
		heap.Pop(&s.h)
	}
	return decimal.Zero
}

type percentHeap []decimal.Decimal

func (h percentHeap) Len() int           { return len(h) }
func (h percentHeap) Less(i, j int) bool { return h[i].GreaterThan(h[j]) }
func (h percentHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *percentHeap) Push(x any) { *h = append(*h, x.(decimal.Decimal)) }

func (h *percentHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
