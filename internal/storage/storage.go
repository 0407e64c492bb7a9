// Package storage keeps the raw content of imported sheets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when a key has no stored content.
var ErrNotFound = errors.New("not found")

// Storage defines the file storage operations the importer needs.
// Keys use forward slashes whatever the backend.
type Storage interface {
	// Put stores content at the given key, replacing any previous content
	Put(ctx context.Context, key string, content []byte) error

	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys starting with prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)
}

// SheetKey builds the archive key of an imported sheet. The signature
// prefix keeps different contents of the same file name apart.
func SheetKey(storeKey string, date time.Time, signature, fileName string) string {
	sig := signature
	if len(sig) > 12 {
		sig = sig[:12]
	}
	return fmt.Sprintf("sheets/%s/%s/%s-%s", storeKey, date.Format("2006-01-02"), sig, path.Base(strings.ReplaceAll(fileName, "\\", "/")))
}
