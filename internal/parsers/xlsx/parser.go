package xlsx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/kosarica/price-comparator/internal/parsers/sheet"
	"github.com/kosarica/price-comparator/internal/types"
)

// XlsxParserOptions represents XLSX parser options
type XlsxParserOptions struct {
	// SheetName selects a worksheet; empty means the first one.
	SheetName       string `json:"sheetName,omitempty"`
	DefaultCurrency string `json:"defaultCurrency,omitempty"`
}

// DefaultOptions returns default XLSX parser options
func DefaultOptions() XlsxParserOptions {
	return XlsxParserOptions{DefaultCurrency: "RON"}
}

// Parser is an XLSX parser implementation
type Parser struct {
	options XlsxParserOptions
}

// NewParser creates a new XLSX parser
func NewParser(options XlsxParserOptions) *Parser {
	return &Parser{options: options}
}

// Parse parses a price or discount workbook. An empty kind is detected from
// the header row.
func (p *Parser) Parse(content []byte, kind types.SheetKind) (*types.ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := p.selectSheet(f)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheetName, err)
	}
	convertDateCells(rows, uses1904(f))

	if kind == "" {
		kind = sheet.DetectKind(headerRow(rows))
	}

	log.Debug().
		Str("sheet", sheetName).
		Str("kind", string(kind)).
		Int("rows", len(rows)).
		Msg("Parsing XLSX sheet")

	result, err := sheet.MapRows(kind, rows, p.options.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse worksheet %q: %w", sheetName, err)
	}
	return result, nil
}

// selectSheet selects the appropriate sheet from the workbook
func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if p.options.SheetName == "" {
		return sheetList[0], nil
	}
	for _, name := range sheetList {
		if strings.EqualFold(name, p.options.SheetName) {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found. Available sheets: %s", p.options.SheetName, strings.Join(sheetList, ", "))
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

func headerRow(rows [][]string) []string {
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				return r
			}
		}
	}
	return nil
}

// convertDateCells rewrites Excel serial dates in date columns as
// YYYY-MM-DD so the row mapper sees the same text as in a CSV sheet.
func convertDateCells(rows [][]string, date1904 bool) {
	header := headerRow(rows)
	var dateCols []int
	for i, h := range header {
		if sheet.IsDateHeader(h) {
			dateCols = append(dateCols, i)
		}
	}
	if len(dateCols) == 0 {
		return
	}

	for _, row := range rows {
		for _, c := range dateCols {
			if c >= len(row) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil || serial < 1 {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			row[c] = t.Format(time.DateOnly)
		}
	}
}
