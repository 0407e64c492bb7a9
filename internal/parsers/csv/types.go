package csv

import (
	"unicode/utf8"

	"github.com/kosarica/price-comparator/internal/parsers/charset"
)

// CsvDelimiter represents supported CSV delimiters
type CsvDelimiter string

const (
	DelimiterComma     CsvDelimiter = ","
	DelimiterSemicolon CsvDelimiter = ";"
	DelimiterTab       CsvDelimiter = "\t"
)

// Rune returns the delimiter character.
func (d CsvDelimiter) Rune() rune {
	r, _ := utf8.DecodeRuneInString(string(d))
	return r
}

// CsvParserOptions represents CSV parser options. Zero values mean detect
// (delimiter, encoding) or use the default (quote char, currency).
type CsvParserOptions struct {
	Delimiter       CsvDelimiter     `json:"delimiter,omitempty"`
	Encoding        charset.Encoding `json:"encoding,omitempty"`
	QuoteChar       rune             `json:"quoteChar,omitempty"`
	DefaultCurrency string           `json:"defaultCurrency,omitempty"`
}

// DefaultOptions returns default CSV parser options
func DefaultOptions() CsvParserOptions {
	return CsvParserOptions{
		QuoteChar:       '"',
		DefaultCurrency: "RON",
	}
}
