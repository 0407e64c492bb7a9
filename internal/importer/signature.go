package importer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kosarica/price-comparator/internal/types"
)

// SignatureVersion is bumped whenever the canonical row format changes.
const SignatureVersion = 2

// Signature computes a deterministic hash of a parsed sheet. Row order,
// letter case of keys and text columns, and formatting of numbers do not
// affect it; any change to a price, an interval or a percentage does.
func Signature(info types.FileInfo, result *types.ParseResult) string {
	lines := make([]string, 0, len(result.Prices)+len(result.Discounts))
	for _, p := range result.Prices {
		lines = append(lines, canonical("p", p.ProductKey, p.Name, p.Brand, p.Category,
			p.PackageQuantity.String(), p.PackageUnit, p.Price.String(), p.Currency))
	}
	for _, d := range result.Discounts {
		lines = append(lines, canonical("d", d.ProductKey, d.Name, d.Brand,
			d.FromDate.Format(time.DateOnly), d.ToDate.Format(time.DateOnly),
			d.PercentOff.String(), d.PackageUnit))
	}
	slices.Sort(lines)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "v%d|%s|%s|%s\n", SignatureVersion, info.StoreKey, result.Kind, info.Date.Format(time.DateOnly))
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:])
}

func canonical(fields ...string) string {
	for i, f := range fields {
		fields[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return strings.Join(fields, "|")
}
