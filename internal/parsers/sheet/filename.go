package sheet

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kosarica/price-comparator/internal/types"
)

// <store>_<yyyy-mm-dd>.<ext> or <store>_discounts_<yyyy-mm-dd>.<ext>
var fileNamePattern = regexp.MustCompile(`^([a-z0-9-]+?)(_discounts?)?_(\d{4}-\d{2}-\d{2})\.(csv|xlsx)$`)

// ParseFileName extracts the store, sheet date, kind and file type from a
// sheet file name. Directories in path are ignored.
func ParseFileName(path string) (types.FileInfo, error) {
	name := filepath.Base(path)
	m := fileNamePattern.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return types.FileInfo{}, fmt.Errorf("file name %q does not match <store>_[discounts_]<yyyy-mm-dd>.csv|xlsx", name)
	}

	date, err := ParseDate(m[3])
	if err != nil {
		return types.FileInfo{}, fmt.Errorf("file name %q: %w", name, err)
	}

	info := types.FileInfo{
		Name:     name,
		StoreKey: m[1],
		Date:     date,
		Kind:     types.SheetPrices,
		Type:     types.FileType(m[4]),
	}
	if m[2] != "" {
		info.Kind = types.SheetDiscounts
	}
	return info, nil
}
