package optimizer

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"go.opentelemetry.io/otel/attribute"
)

// Substitutes compares every listing of productName by price per package
// unit on date, cheapest first. All listings sharing the lowest final unit
// price are flagged BestValue.
func (s *Service) Substitutes(ctx context.Context, productName string, date time.Time) (subs []Substitute, err error) {
	ctx, done := s.observe(ctx, "substitutes", attribute.String("product", productName))
	defer func() { done(err) }()

	name := strings.TrimSpace(productName)
	if name == "" {
		return nil, &ErrInvalidRequest{Field: "product", Reason: "is required"}
	}
	date = pricing.Day(date)

	offers, err := s.source.LoadAllStoresForProduct(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, ErrProductNotFound
	}
	quotes, err := s.quoteOffers(ctx, offers, date)
	if err != nil {
		return nil, err
	}

	subs = make([]Substitute, len(offers))
	for i, o := range offers {
		q := quotes[i]
		qty := o.Product.PackageQuantity
		subs[i] = Substitute{
			Listing:        o.Listing,
			BasePrice:      q.BasePrice,
			UnitPrice:      pricing.UnitPrice(q.BasePrice, qty),
			PercentOff:     q.PercentOff,
			FinalPrice:     pricing.DisplayPrice(q.EffectivePrice),
			FinalUnitPrice: pricing.UnitPrice(q.EffectivePrice, qty),
		}
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].FinalUnitPrice.LessThan(subs[j].FinalUnitPrice)
	})
	best := subs[0].FinalUnitPrice
	for i := range subs {
		subs[i].BestValue = subs[i].FinalUnitPrice.Equal(best)
	}
	return subs, nil
}
