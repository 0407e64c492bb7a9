package sheet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var currencySuffix = regexp.MustCompile(`\s*(LEI|RON|KN|HRK|EUR|USD)\s*$`)

// ParsePrice parses a shelf price into a decimal.
// Handles various formats: "12.99", "12,99", "1.299,00", "1 299,00 lei"
func ParsePrice(value string) (decimal.Decimal, error) {
	d, err := parseNumber(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", value, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid price %q: negative", value)
	}
	return d, nil
}

// ParsePercent parses a discount percentage in [0, 100]. A trailing % is allowed.
func ParsePercent(value string) (decimal.Decimal, error) {
	d, err := parseNumber(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: %w", value, err)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("invalid percentage %q: outside 0-100", value)
	}
	return d, nil
}

// ParseQuantity parses a package size. Empty means unknown and yields zero.
func ParseQuantity(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := parseNumber(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: %w", value, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: negative", value)
	}
	return d, nil
}

func parseNumber(value string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '€', '$', '£', ' ', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(value))
	cleaned = strings.TrimSpace(currencySuffix.ReplaceAllString(strings.ToUpper(cleaned), ""))
	if cleaned == "" {
		return decimal.Zero, errors.New("no numeric value found")
	}

	// Whichever separator comes last is the decimal separator.
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return decimal.NewFromString(cleaned)
}

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02T15:04:05",
	time.DateTime,
}

// ParseDate parses a sheet date into UTC midnight.
func ParseDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
