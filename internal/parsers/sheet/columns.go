// Package sheet maps the rows of a store price or discount sheet, whatever
// its file format, onto typed records.
package sheet

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kosarica/price-comparator/internal/types"
)

// Column names as they appear in sheet headers. Each field accepts a few
// aliases; matching ignores case, surrounding spaces and diacritics.
var (
	colProductKey = []string{"product_id", "product_key", "id"}
	colName       = []string{"product_name", "name"}
	colCategory   = []string{"product_category", "category"}
	colBrand      = []string{"brand"}
	colQuantity   = []string{"package_quantity", "quantity", "grammage"}
	colUnit       = []string{"package_unit", "unit"}
	colPrice      = []string{"price"}
	colCurrency   = []string{"currency"}
	colFromDate   = []string{"from_date", "start_date"}
	colToDate     = []string{"to_date", "end_date"}
	colPercent    = []string{"percentage_of_discount", "percent_off", "discount"}
)

type column struct {
	field    string
	aliases  []string
	required bool
}

var layouts = map[types.SheetKind][]column{
	types.SheetPrices: {
		{"productKey", colProductKey, true},
		{"name", colName, true},
		{"category", colCategory, false},
		{"brand", colBrand, false},
		{"packageQuantity", colQuantity, false},
		{"packageUnit", colUnit, false},
		{"price", colPrice, true},
		{"currency", colCurrency, false},
	},
	types.SheetDiscounts: {
		{"productKey", colProductKey, true},
		{"name", colName, true},
		{"brand", colBrand, false},
		{"packageQuantity", colQuantity, false},
		{"packageUnit", colUnit, false},
		{"category", colCategory, false},
		{"fromDate", colFromDate, true},
		{"toDate", colToDate, true},
		{"percentOff", colPercent, true},
	},
}

var headerFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	folded, _, err := transform.String(headerFolder, h)
	if err != nil {
		return h
	}
	return strings.ReplaceAll(folded, " ", "_")
}

// resolveColumns maps field names to header positions.
func resolveColumns(kind types.SheetKind, headers []string) (map[string]int, error) {
	layout, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("unknown sheet kind %q", kind)
	}

	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		n := normalizeHeader(h)
		if _, dup := positions[n]; !dup && n != "" {
			positions[n] = i
		}
	}

	indices := make(map[string]int, len(layout))
	for _, col := range layout {
		for _, alias := range col.aliases {
			if idx, ok := positions[alias]; ok {
				indices[col.field] = idx
				break
			}
		}
		if _, found := indices[col.field]; !found && col.required {
			return nil, fmt.Errorf("column %q not found in headers", col.aliases[0])
		}
	}
	return indices, nil
}

// DetectKind guesses the sheet layout from its header row.
func DetectKind(headers []string) types.SheetKind {
	for _, h := range headers {
		n := normalizeHeader(h)
		for _, alias := range colFromDate {
			if n == alias {
				return types.SheetDiscounts
			}
		}
	}
	return types.SheetPrices
}

// MapRows converts raw rows into typed records. The first non-empty row is
// the header. Rows that fail to parse are reported in Errors and skipped;
// a missing required column is the only fatal condition.
func MapRows(kind types.SheetKind, rows [][]string, defaultCurrency string) (*types.ParseResult, error) {
	result := &types.ParseResult{Kind: kind}

	header := -1
	for i, r := range rows {
		if !isEmptyRow(r) {
			header = i
			break
		}
	}
	if header == -1 {
		return result, nil
	}

	indices, err := resolveColumns(kind, rows[header])
	if err != nil {
		return nil, err
	}

	for i := header + 1; i < len(rows); i++ {
		raw := rows[i]
		if isEmptyRow(raw) {
			continue
		}
		result.TotalRows++
		r := rowReader{raw: raw, indices: indices, rowNumber: i + 1}

		switch kind {
		case types.SheetPrices:
			row := r.priceRow(defaultCurrency)
			if len(r.errs) == 0 {
				result.Prices = append(result.Prices, row)
			}
		case types.SheetDiscounts:
			row := r.discountRow()
			if len(r.errs) == 0 {
				result.Discounts = append(result.Discounts, row)
			}
		}

		if len(r.errs) > 0 {
			result.Errors = append(result.Errors, r.errs...)
			continue
		}
		result.ValidRows++
	}
	return result, nil
}

type rowReader struct {
	raw       []string
	indices   map[string]int
	rowNumber int
	errs      []types.ParseError
}

func (r *rowReader) get(field string) string {
	idx, ok := r.indices[field]
	if !ok || idx >= len(r.raw) {
		return ""
	}
	return strings.TrimSpace(r.raw[idx])
}

func (r *rowReader) fail(field, message, value string) {
	e := types.ParseError{
		RowNumber: types.IntPtr(r.rowNumber),
		Field:     types.StringPtr(field),
		Message:   message,
	}
	if value != "" {
		e.OriginalValue = types.StringPtr(value)
	}
	r.errs = append(r.errs, e)
}

func (r *rowReader) required(field string) string {
	v := r.get(field)
	if v == "" {
		r.fail(field, field+" is required", "")
	}
	return v
}

func (r *rowReader) priceRow(defaultCurrency string) types.PriceRow {
	row := types.PriceRow{
		RowNumber:   r.rowNumber,
		ProductKey:  r.required("productKey"),
		Name:        r.required("name"),
		Category:    r.get("category"),
		Brand:       r.get("brand"),
		PackageUnit: r.get("packageUnit"),
		Currency:    strings.ToUpper(r.get("currency")),
	}
	if row.Currency == "" {
		row.Currency = defaultCurrency
	}

	var err error
	if row.PackageQuantity, err = ParseQuantity(r.get("packageQuantity")); err != nil {
		r.fail("packageQuantity", "Invalid package quantity", r.get("packageQuantity"))
	}
	if v := r.required("price"); v != "" {
		if row.Price, err = ParsePrice(v); err != nil {
			r.fail("price", "Invalid price value", v)
		}
	}
	return row
}

func (r *rowReader) discountRow() types.DiscountRow {
	row := types.DiscountRow{
		RowNumber:   r.rowNumber,
		ProductKey:  r.required("productKey"),
		Name:        r.required("name"),
		Brand:       r.get("brand"),
		PackageUnit: r.get("packageUnit"),
		Category:    r.get("category"),
	}

	var err error
	if row.PackageQuantity, err = ParseQuantity(r.get("packageQuantity")); err != nil {
		r.fail("packageQuantity", "Invalid package quantity", r.get("packageQuantity"))
	}
	if v := r.required("fromDate"); v != "" {
		if row.FromDate, err = ParseDate(v); err != nil {
			r.fail("fromDate", "Invalid date", v)
		}
	}
	if v := r.required("toDate"); v != "" {
		if row.ToDate, err = ParseDate(v); err != nil {
			r.fail("toDate", "Invalid date", v)
		}
	}
	if v := r.required("percentOff"); v != "" {
		if row.PercentOff, err = ParsePercent(v); err != nil {
			r.fail("percentOff", "Invalid percentage", v)
		}
	}
	if !row.FromDate.IsZero() && !row.ToDate.IsZero() && row.FromDate.After(row.ToDate) {
		r.fail("toDate", "to_date is before from_date", r.get("toDate"))
	}
	return row
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// IsDateHeader reports whether a header names a date column.
func IsDateHeader(h string) bool {
	n := normalizeHeader(h)
	for _, alias := range append(colFromDate, colToDate...) {
		if n == alias {
			return true
		}
	}
	return false
}
