package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/types"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.99", "12.99"},
		{"12,99", "12.99"},
		{"1.299,00", "1299"},
		{"1,299.50", "1299.5"},
		{"1 299,00 lei", "1299"},
		{"9.90 RON", "9.9"},
		{"€ 3,5", "3.5"},
		{"7", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	for _, bad := range []string{"", "lei", "abc", "-1.00", "1.2.3,4,5x"} {
		_, err := ParsePrice(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePercent(t *testing.T) {
	got, err := ParsePercent("25%")
	require.NoError(t, err)
	assert.Equal(t, "25", got.String())

	got, err = ParsePercent("12,5")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.String())

	for _, bad := range []string{"101", "-5", ""} {
		_, err := ParsePercent(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-05-08", "2025/05/08", "08.05.2025", "08/05/2025", "2025-05-08 13:45:00"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := ParseDate("May 8")
	assert.Error(t, err)
}

func TestParseFileName(t *testing.T) {
	info, err := ParseFileName("data/lidl_2025-05-08.csv")
	require.NoError(t, err)
	assert.Equal(t, types.FileInfo{
		Name:     "lidl_2025-05-08.csv",
		StoreKey: "lidl",
		Date:     time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC),
		Kind:     types.SheetPrices,
		Type:     types.FileTypeCSV,
	}, info)

	info, err = ParseFileName("Kaufland_discounts_2025-05-01.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "kaufland", info.StoreKey)
	assert.Equal(t, types.SheetDiscounts, info.Kind)
	assert.Equal(t, types.FileTypeXLSX, info.Type)

	for _, bad := range []string{"lidl.csv", "lidl_2025-05-08.txt", "lidl_2025-13-40.csv", "_2025-05-08.csv"} {
		_, err := ParseFileName(bad)
		assert.Error(t, err, bad)
	}
}

func TestMapRowsPrices(t *testing.T) {
	rows := [][]string{
		{},
		{"Product_ID", "Product_Name", "Product_Category", "Brand", "Package_Quantity", "Package_Unit", "Price", "Currency"},
		{"P001", "lapte zuzu", "lactate", "Zuzu", "1", "l", "9,90", "RON"},
		{"P002", "iaurt grecesc", "lactate", "Olympus", "0.4", "kg", "11.50", ""},
		{"", "", "", "", "", "", "", ""},
		{"P003", "branza", "lactate", "", "0.2", "kg", "n/a", "RON"},
		{"P004", "", "lactate", "", "1", "buc", "2.00", "RON"},
	}

	res, err := MapRows(types.SheetPrices, rows, "RON")
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalRows)
	assert.Equal(t, 2, res.ValidRows)

	require.Len(t, res.Prices, 2)
	assert.Equal(t, "P001", res.Prices[0].ProductKey)
	assert.Equal(t, "9.9", res.Prices[0].Price.String())
	assert.Equal(t, "1", res.Prices[0].PackageQuantity.String())
	assert.Equal(t, 3, res.Prices[0].RowNumber)
	assert.Equal(t, "RON", res.Prices[1].Currency)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 6, *res.Errors[0].RowNumber)
	assert.Equal(t, "price", *res.Errors[0].Field)
	assert.Equal(t, "n/a", *res.Errors[0].OriginalValue)
	assert.Equal(t, "name", *res.Errors[1].Field)
}

func TestMapRowsDiscounts(t *testing.T) {
	rows := [][]string{
		{"product_id", "product_name", "brand", "package_quantity", "package_unit", "product_category", "from_date", "to_date", "percentage_of_discount"},
		{"P001", "lapte zuzu", "Zuzu", "1", "l", "lactate", "2025-05-01", "2025-05-07", "20"},
		{"P002", "iaurt", "Danone", "0.4", "kg", "lactate", "2025-05-07", "2025-05-01", "10"},
		{"P003", "oua", "", "10", "buc", "oua", "2025-05-01", "2025-05-07", "150"},
	}

	res, err := MapRows(types.SheetDiscounts, rows, "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 1, res.ValidRows)
	require.Len(t, res.Discounts, 1)
	assert.Equal(t, "20", res.Discounts[0].PercentOff.String())
	assert.Equal(t, time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC), res.Discounts[0].ToDate)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "toDate", *res.Errors[0].Field)
	assert.Equal(t, "percentOff", *res.Errors[1].Field)
}

func TestMapRowsMissingColumn(t *testing.T) {
	_, err := MapRows(types.SheetPrices, [][]string{{"product_id", "product_name"}}, "RON")
	assert.ErrorContains(t, err, `"price"`)
}

func TestMapRowsEmpty(t *testing.T) {
	res, err := MapRows(types.SheetPrices, nil, "RON")
	require.NoError(t, err)
	assert.Zero(t, res.TotalRows)
}

func TestHeaderMatchingIgnoresDiacritics(t *testing.T) {
	idx, err := resolveColumns(types.SheetPrices, []string{"\ufeffID", " Nâme ", "Príce"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"productKey": 0, "name": 1, "price": 2}, idx)
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, types.SheetDiscounts, DetectKind([]string{"product_id", "From_Date"}))
	assert.Equal(t, types.SheetPrices, DetectKind([]string{"product_id", "price"}))
}
