package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/pricing"
)

var testToday = time.Date(2025, 1, 5, 15, 30, 0, 0, time.UTC)

type snapshotLoader struct {
	snap *optimizer.Snapshot
}

func (l snapshotLoader) LoadSnapshot(context.Context) (*optimizer.Snapshot, error) {
	return l.snap, nil
}

// memoryAlerts is an in-memory AlertStore.
type memoryAlerts struct {
	mu     sync.Mutex
	nextID int64
	alerts map[int64]database.Alert
}

func newMemoryAlerts() *memoryAlerts {
	return &memoryAlerts{alerts: make(map[int64]database.Alert)}
}

func (m *memoryAlerts) CreateAlert(_ context.Context, productName string, target decimal.Decimal) (database.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := database.Alert{
		ID:          m.nextID,
		ProductName: productName,
		TargetPrice: target,
		Status:      database.AlertActive,
		CreatedAt:   testToday,
	}
	m.alerts[a.ID] = a
	return a, nil
}

func (m *memoryAlerts) GetAlert(_ context.Context, id int64) (database.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return database.Alert{}, database.ErrNotFound
	}
	return a, nil
}

func (m *memoryAlerts) ListAlerts(_ context.Context, limit int) ([]database.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]database.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type staticRuns struct{}

func (staticRuns) ListImportRuns(_ context.Context, limit int) ([]database.ImportRun, error) {
	runs := []database.ImportRun{
		{
			ID:         "3f1c2a9e-7b7d-4d8e-9a51-0c6f1e2d3b4a",
			FileName:   "lidl_2025-01-01.csv",
			StoreKey:   "lidl",
			Kind:       database.ImportPrices,
			SheetDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Signature:  "abc123",
			RowCount:   42,
			ImportedAt: testToday,
		},
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func testMarket() *optimizer.Snapshot {
	snap := optimizer.NewSnapshot()
	names := map[string]string{"lidl": "Lidl", "kaufland": "Kaufland", "profi": "Profi"}
	listing := func(key, name, store, qty, unit, price string) {
		snap.AddListing(optimizer.Listing{
			Product: optimizer.ProductInfo{
				Key:             key,
				Name:            name,
				Brand:           "Zuzu",
				Category:        "lactate",
				PackageQuantity: decimal.RequireFromString(qty),
				PackageUnit:     unit,
			},
			StoreKey:  store,
			StoreName: names[store],
		})
		if price != "" {
			snap.AddPrice(pricing.PriceFact{
				ProductKey: key,
				StoreKey:   store,
				BasePrice:  decimal.RequireFromString(price),
				AsOf:       time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
			})
		}
	}
	discount := func(key, store string, from, to int, pct string) {
		snap.AddDiscount(pricing.DiscountInterval{
			ProductKey: key,
			StoreKey:   store,
			FromDate:   time.Date(2025, 1, from, 0, 0, 0, 0, time.UTC),
			ToDate:     time.Date(2025, 1, to, 0, 0, 0, 0, time.UTC),
			PercentOff: decimal.RequireFromString(pct),
		})
	}

	listing("P001", "Lapte Zuzu", "lidl", "1", "l", "9.90")
	listing("K001", "Lapte Zuzu", "kaufland", "2", "l", "10.10")
	listing("R001", "Lapte Zuzu", "profi", "1", "l", "9.50")
	discount("P001", "lidl", 1, 7, "20")
	discount("K001", "kaufland", 3, 10, "10")
	listing("P010", "Paine Alba", "lidl", "0.5", "kg", "3.00")
	listing("R010", "Paine Alba", "profi", "0.5", "kg", "2.50")
	listing("K020", "Oua", "kaufland", "10", "buc", "12.00")
	discount("K020", "kaufland", 1, 31, "25")
	listing("P099", "Iaurt", "lidl", "0.4", "kg", "")
	discount("P099", "lidl", 1, 10, "50")
	return snap.Seal()
}

// setupRouter wires the handlers to a warmed cache over testMarket.
func setupRouter(t *testing.T) (*gin.Engine, *memoryAlerts) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := optimizer.Defaults()
	cache := optimizer.NewFactCache(snapshotLoader{snap: testMarket()}, cfg)
	require.NoError(t, cache.Warmup(context.Background()))
	t.Cleanup(func() { _ = cache.Close() })

	alerts := newMemoryAlerts()
	Init(optimizer.NewService(cache, cfg), cache, alerts, staticRuns{})
	SetClock(func() time.Time { return testToday })
	t.Cleanup(func() {
		Init(nil, nil, nil, nil)
		SetClock(time.Now)
	})

	router := gin.New()
	router.GET("/health", HealthCheck)
	RegisterRoutes(router.Group("/api"))
	return router, alerts
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestOptimizeBasketHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/basket/optimize", BasketRequest{
		Items: []string{"lapte zuzu", "paine alba", "branza", "oua"},
		Date:  "2025-01-05",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[BasketResponse](t, w)
	assert.Equal(t, "2025-01-05", resp.Date)
	assert.Equal(t, "19.42", resp.Total)
	assert.Equal(t, []string{"branza"}, resp.NotFound)

	require.Len(t, resp.Stores, 3)
	assert.Equal(t, "lidl", resp.Stores[0].StoreKey)
	assert.Equal(t, "Lidl", resp.Stores[0].StoreName)
	assert.Equal(t, "7.92", resp.Stores[0].Total)
	require.Len(t, resp.Stores[0].Items, 1)
	assert.Equal(t, "7.92", resp.Stores[0].Items[0].Price)
	assert.Equal(t, "20", resp.Stores[0].Items[0].PercentOff)
	assert.Equal(t, "profi", resp.Stores[1].StoreKey)
	assert.Equal(t, "2.50", resp.Stores[1].Total)
	assert.Equal(t, "kaufland", resp.Stores[2].StoreKey)
	assert.Equal(t, "9.00", resp.Stores[2].Total)
}

func TestOptimizeBasketHandlerDefaultsToToday(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/basket/optimize", BasketRequest{
		Items: []string{"oua"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[BasketResponse](t, w)
	assert.Equal(t, "2025-01-05", resp.Date)
	assert.Equal(t, "9.00", resp.Total)
}

func TestOptimizeBasketHandlerValidation(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing items", map[string]any{"date": "2025-01-05"}},
		{"empty items", BasketRequest{Items: []string{}}},
		{"blank item", BasketRequest{Items: []string{"oua", ""}}},
		{"bad date", BasketRequest{Items: []string{"oua"}, Date: "05/01/2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/basket/optimize", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decodeBody[ErrorResponse](t, w).Error)
		})
	}
}

func TestPriceHistoryHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet,
		"/api/products/lapte%20zuzu/history?store=lidl&from=2025-01-01&to=2025-01-10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[HistoryResponse](t, w)
	assert.Equal(t, "Lapte Zuzu", resp.ProductName)
	assert.Equal(t, "Zuzu", resp.Brand)
	assert.Equal(t, "l", resp.PackageUnit)
	assert.Equal(t, []PriceInterval{
		{
			StoreKey: "lidl", StoreName: "Lidl",
			FromDate: "2025-01-01", ToDate: "2025-01-07",
			BasePrice: "9.90", PercentOff: "20", EffectivePrice: "7.92",
		},
		{
			StoreKey: "lidl", StoreName: "Lidl",
			FromDate: "2025-01-08", ToDate: "2025-01-10",
			BasePrice: "9.90", PercentOff: "0", EffectivePrice: "9.90",
		},
	}, resp.Intervals)
}

func TestPriceHistoryHandlerErrors(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/products/branza/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/products/oua/history?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/products/oua/history?from=2025-02-01&to=2025-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubstitutesHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/products/lapte%20zuzu/substitutes?date=2025-01-05", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[[]Substitute](t, w)
	require.Len(t, resp, 3)

	assert.Equal(t, "kaufland", resp[0].StoreKey)
	assert.Equal(t, "5.0500", resp[0].UnitPrice)
	assert.Equal(t, "9.09", resp[0].FinalPrice)
	assert.Equal(t, "4.5450", resp[0].FinalUnitPrice)
	assert.True(t, resp[0].BestValue)

	assert.Equal(t, "lidl", resp[1].StoreKey)
	assert.Equal(t, "7.9200", resp[1].FinalUnitPrice)
	assert.False(t, resp[1].BestValue)

	assert.Equal(t, "profi", resp[2].StoreKey)
	assert.Equal(t, "9.5000", resp[2].FinalUnitPrice)
}

func TestBestDiscountsHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/discounts/best?date=2025-01-05", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[[]DiscountOffer](t, w)
	require.Len(t, resp, 3)
	assert.Equal(t, "Oua", resp[0].Name)
	assert.Equal(t, "25", resp[0].PercentOff)
	assert.Equal(t, "9.00", resp[0].DiscountedPrice)
	assert.Equal(t, "lidl", resp[1].StoreKey)
	assert.Equal(t, "7.92", resp[1].DiscountedPrice)
	assert.Equal(t, "kaufland", resp[2].StoreKey)
	assert.Equal(t, "10", resp[2].PercentOff)

	w = doRequest(t, router, http.MethodGet, "/api/discounts/best?date=2025-01-05&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]DiscountOffer](t, w), 1)

	w = doRequest(t, router, http.MethodGet, "/api/discounts/best?limit=501", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewDiscountsHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/discounts/new?date=2025-01-03", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[[]NewDiscount](t, w)
	require.Len(t, resp, 1)
	assert.Equal(t, "K001", resp[0].ProductKey)
	assert.Equal(t, "2025-01-03", resp[0].FromDate)
	assert.Equal(t, "2025-01-10", resp[0].ToDate)
	assert.Equal(t, "9.09", resp[0].DiscountedPrice)
}

func TestAlertHandlers(t *testing.T) {
	router, alerts := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/alerts", CreateAlertRequest{
		ProductName: "lapte zuzu",
		TargetPrice: "8",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[AlertResponse](t, w)
	assert.Equal(t, "8.00", created.TargetPrice)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Nil(t, created.Triggered)

	w = doRequest(t, router, http.MethodGet, "/api/alerts/1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeBody[AlertResponse](t, w)
	require.NotNil(t, got.Triggered)
	assert.True(t, *got.Triggered)
	require.NotNil(t, got.Best)
	assert.Equal(t, "lidl", got.Best.StoreKey)
	assert.Equal(t, "7.92", got.Best.Price)

	_, err := alerts.CreateAlert(context.Background(), "oua", decimal.RequireFromString("5"))
	require.NoError(t, err)
	w = doRequest(t, router, http.MethodGet, "/api/alerts/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decodeBody[AlertResponse](t, w)
	require.NotNil(t, got.Triggered)
	assert.False(t, *got.Triggered)

	w = doRequest(t, router, http.MethodGet, "/api/alerts?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]AlertResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
}

func TestAlertHandlerErrors(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/alerts", CreateAlertRequest{ProductName: "oua", TargetPrice: "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/alerts", CreateAlertRequest{ProductName: "oua", TargetPrice: "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/alerts/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/alerts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/alerts?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCacheHandlers(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/cache/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	status := decodeBody[CacheStatus](t, w)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "closed", status.CircuitBreaker)
	assert.Equal(t, 7, status.Listings)
	assert.Equal(t, 4, status.Discounts)

	w = doRequest(t, router, http.MethodPost, "/api/cache/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ok", decodeBody[CacheStatus](t, w).Status)
}

func TestListRunsHandler(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/api/imports/runs", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[ListRunsResponse](t, w)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "lidl_2025-01-01.csv", resp.Runs[0].FileName)
	assert.Equal(t, "prices", resp.Runs[0].Kind)
	assert.Equal(t, "2025-01-01", resp.Runs[0].SheetDate)

	w = doRequest(t, router, http.MethodGet, "/api/imports/runs?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "not configured", resp.Database)
	assert.Equal(t, "loaded", resp.Cache)
}

func TestHealthCheckAfterLateLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := optimizer.Defaults()
	cache := optimizer.NewFactCache(snapshotLoader{snap: testMarket()}, cfg)
	t.Cleanup(func() { _ = cache.Close() })
	Init(optimizer.NewService(cache, cfg), cache, newMemoryAlerts(), staticRuns{})
	t.Cleanup(func() { Init(nil, nil, nil, nil) })

	router := gin.New()
	router.GET("/health", HealthCheck)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "empty", decodeBody[HealthResponse](t, w).Cache)

	require.NoError(t, cache.Refresh(context.Background()))

	w = doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "loaded", decodeBody[HealthResponse](t, w).Cache)
}

func TestHandlersWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init(nil, nil, nil, nil)
	router := gin.New()
	RegisterRoutes(router.Group("/api"))

	w := doRequest(t, router, http.MethodPost, "/api/basket/optimize", BasketRequest{Items: []string{"oua"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/cache/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
