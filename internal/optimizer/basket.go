package optimizer

import (
	"context"
	"strings"
	"time"

	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// OptimizeBasket assigns each product to the store with the lowest effective
// price on date. Products no store quotes are reported in NotFound.
func (s *Service) OptimizeBasket(ctx context.Context, productNames []string, date time.Time) (result *BasketResult, err error) {
	ctx, done := s.observe(ctx, "basket", attribute.Int("items", len(productNames)))
	defer func() { done(err) }()

	names, err := s.validateBasket(productNames)
	if err != nil {
		return nil, err
	}
	date = pricing.Day(date)

	unique := lo.Uniq(names)
	quotes := make([][]pricing.Quote, len(unique))
	offers := make([][]StoreOffer, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.FetchConcurrency)
	for i, name := range unique {
		g.Go(func() error {
			o, err := s.source.LoadAllStoresForProduct(gctx, name)
			if err != nil {
				return err
			}
			q, err := s.quoteOffers(gctx, o, date)
			if err != nil {
				return err
			}
			offers[i], quotes[i] = o, q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quotesByProduct := make(map[string][]pricing.Quote, len(unique))
	storeDisplay := make(map[string]string)
	for i, name := range unique {
		quotesByProduct[name] = quotes[i]
		for k, v := range storeNames(offers[i]) {
			if _, ok := storeDisplay[k]; !ok {
				storeDisplay[k] = v
			}
		}
	}

	res := pricing.ResolveBasket(names, quotesByProduct)

	result = &BasketResult{
		Date:     date,
		Stores:   make([]StoreBasket, 0, len(res.Stores)),
		NotFound: res.NotFound,
		Total:    decimal.Zero,
	}
	for _, key := range res.Stores {
		lines := res.ByStore[key]
		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.Price)
		}
		total = pricing.DisplayPrice(total)
		result.Stores = append(result.Stores, StoreBasket{
			StoreKey:  key,
			StoreName: storeDisplay[key],
			Items:     lines,
			Total:     total,
		})
		result.Total = result.Total.Add(total)
	}

	s.metrics.RecordBasket(len(names), len(res.NotFound))
	s.logger.Debug().
		Int("items", len(names)).
		Int("stores", len(result.Stores)).
		Int("not_found", len(result.NotFound)).
		Str("request_id", RequestIDFrom(ctx)).
		Msg("Optimized basket")

	return result, nil
}

func (s *Service) validateBasket(productNames []string) ([]string, error) {
	if len(productNames) == 0 {
		return nil, &ErrInvalidRequest{Field: "items", Reason: "must contain at least one product"}
	}
	if len(productNames) > s.config.MaxBasketItems {
		return nil, &ErrInvalidRequest{Field: "items", Reason: "exceeds the maximum basket size"}
	}
	names := make([]string, len(productNames))
	for i, n := range productNames {
		names[i] = strings.TrimSpace(n)
		if names[i] == "" {
			return nil, &ErrInvalidRequest{Field: "items", Reason: "must not contain blank product names"}
		}
	}
	return names, nil
}
