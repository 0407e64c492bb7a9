package csv

import (
	"strings"
	"unicode/utf8"
)

const delimiterSampleLines = 5

// DetectDelimiter picks the delimiter that splits the header into more than one
// field and the most sample rows into as many fields as the header.
// Quoted fields are honoured, so "9,90" in a semicolon sheet does not count.
func DetectDelimiter(content string) CsvDelimiter {
	var sample []string
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample = append(sample, line)
		if len(sample) == delimiterSampleLines {
			break
		}
	}

	best, bestRows, bestWidth := DelimiterComma, -1, 0
	if len(sample) == 0 {
		return best
	}
	for _, delim := range []CsvDelimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab} {
		width := len(SplitCSVLine(sample[0], delim.Rune(), '"'))
		if width < 2 {
			continue
		}
		rows := 0
		for _, line := range sample[1:] {
			if len(SplitCSVLine(line, delim.Rune(), '"')) == width {
				rows++
			}
		}
		if rows > bestRows || (rows == bestRows && width > bestWidth) {
			best, bestRows, bestWidth = delim, rows, width
		}
	}
	return best
}

// SplitCSVLine splits a CSV line handling quoted fields
func SplitCSVLine(line string, delimiter rune, quoteChar rune) []string {
	fields := make([]string, 0, 10)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); {
		r, width := utf8.DecodeRuneInString(line[i:])
		i += width

		if inQuotes {
			if r == quoteChar {
				// Doubled quote is an escaped quote.
				if next, w := utf8.DecodeRuneInString(line[i:]); i < len(line) && next == quoteChar {
					current.WriteRune(quoteChar)
					i += w
					continue
				}
				inQuotes = false
				continue
			}
			current.WriteRune(r)
			continue
		}

		switch r {
		case quoteChar:
			inQuotes = true
		case delimiter:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(fields, current.String())
}

// splitLines splits content into lines handling different line endings
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}
