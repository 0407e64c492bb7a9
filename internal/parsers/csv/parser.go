package csv

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kosarica/price-comparator/internal/parsers/charset"
	"github.com/kosarica/price-comparator/internal/parsers/sheet"
	"github.com/kosarica/price-comparator/internal/types"
)

// Parser implements CSV parsing with encoding and delimiter detection
type Parser struct {
	options CsvParserOptions
}

// NewParser creates a new CSV parser with the given options
func NewParser(options CsvParserOptions) *Parser {
	if options.QuoteChar == 0 {
		options.QuoteChar = '"'
	}
	return &Parser{options: options}
}

// Parse parses a price or discount sheet. An empty kind is detected from
// the header row.
func (p *Parser) Parse(content []byte, kind types.SheetKind) (*types.ParseResult, error) {
	opts := p.options

	if opts.Encoding == "" {
		opts.Encoding = charset.DetectEncoding(content)
	}
	decoded, err := charset.Decode(content, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	if opts.Delimiter == "" {
		opts.Delimiter = DetectDelimiter(decoded)
	}
	delim := opts.Delimiter.Rune()

	lines := splitLines(decoded)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			rows = append(rows, nil)
			continue
		}
		fields := SplitCSVLine(line, delim, opts.QuoteChar)
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
		rows = append(rows, fields)
	}

	if kind == "" {
		kind = sheet.DetectKind(firstRow(rows))
	}

	log.Debug().
		Str("encoding", string(opts.Encoding)).
		Str("delimiter", string(opts.Delimiter)).
		Str("kind", string(kind)).
		Int("lines", len(rows)).
		Msg("Parsing CSV sheet")

	result, err := sheet.MapRows(kind, rows, opts.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return result, nil
}

func firstRow(rows [][]string) []string {
	for _, r := range rows {
		if len(r) > 0 {
			return r
		}
	}
	return nil
}
