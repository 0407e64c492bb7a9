package pricing

// ResolveBasket assigns every requested product name to the store quoting the
// lowest effective price. Names without quotes are collected in NotFound in
// request order.
func ResolveBasket(names []string, quotesByProduct map[string][]Quote) BasketResolution {
	res := BasketResolution{
		Stores:   []string{},
		ByStore:  make(map[string][]BasketLine),
		NotFound: []string{},
	}

	for _, name := range names {
		best, ok := SelectBest(quotesByProduct[name])
		if !ok {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		if _, seen := res.ByStore[best.StoreKey]; !seen {
			res.Stores = append(res.Stores, best.StoreKey)
		}
		res.ByStore[best.StoreKey] = append(res.ByStore[best.StoreKey], BasketLine{
			ProductName: name,
			Price:       best.EffectivePrice,
			PercentOff:  best.PercentOff,
		})
	}

	return res
}
