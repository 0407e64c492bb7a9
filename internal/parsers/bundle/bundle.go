// Package bundle expands .zip archives of store sheets.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Options limits what Expand will read from an archive.
type Options struct {
	MaxFileSize  int64    // Per entry, 0 means unlimited
	MaxTotalSize int64    // All entries together, 0 means unlimited
	MaxFiles     int      // 0 means unlimited
	Extensions   []string // Lowercase, with dot; empty means all
}

// DefaultOptions returns limits suited to daily store sheets.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:  100 * 1024 * 1024,
		MaxTotalSize: 1024 * 1024 * 1024,
		MaxFiles:     10000,
		Extensions:   []string{".csv", ".xlsx"},
	}
}

var skipNames = []string{"__MACOSX", ".DS_Store", "Thumbs.db", "desktop.ini"}

// Entry is one sheet read from an archive. Name is the base name with any
// directories inside the archive dropped.
type Entry struct {
	Name    string
	Content []byte
}

// IsBundle reports whether a file name looks like a sheet archive.
func IsBundle(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// Expand reads the sheet entries of a zip archive in archive order.
func Expand(ctx context.Context, content []byte, opts Options) ([]Entry, error) {
	// Insecure entry names are filtered below, so the reader is still usable.
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("failed to open ZIP: %w", err)
	}

	var (
		entries   []Entry
		totalSize int64
	)
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.FileInfo().IsDir() {
			continue
		}

		if shouldSkip(file.Name) {
			continue
		}
		name, err := sanitizeFilename(file.Name)
		if err != nil || !opts.allowed(name) {
			continue
		}

		if opts.MaxFiles > 0 && len(entries) >= opts.MaxFiles {
			return nil, fmt.Errorf("too many files in archive (limit: %d)", opts.MaxFiles)
		}
		if opts.MaxFileSize > 0 && int64(file.UncompressedSize64) > opts.MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size (%d > %d)", name, file.UncompressedSize64, opts.MaxFileSize)
		}

		data, err := readWithLimit(file, name, opts.MaxFileSize)
		if err != nil {
			return nil, err
		}

		totalSize += int64(len(data))
		if opts.MaxTotalSize > 0 && totalSize > opts.MaxTotalSize {
			return nil, fmt.Errorf("total extracted size exceeds maximum (%d > %d)", totalSize, opts.MaxTotalSize)
		}

		entries = append(entries, Entry{Name: name, Content: data})
	}
	return entries, nil
}

// readWithLimit enforces the size limit on the bytes actually read, not
// just the size the archive declares.
func readWithLimit(file *zip.File, name string, limit int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s in ZIP: %w", name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from ZIP: %w", name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("file %s exceeds maximum size (actual data > %d bytes)", name, limit)
	}
	return data, nil
}

// sanitizeFilename rejects absolute and escaping paths and flattens the
// rest to a base name.
func sanitizeFilename(filename string) (string, error) {
	if path.IsAbs(filename) || filepath.IsAbs(filename) {
		return "", fmt.Errorf("absolute path not allowed: %s", filename)
	}
	if len(filename) >= 2 && filename[1] == ':' {
		return "", fmt.Errorf("Windows drive letter not allowed: %s", filename)
	}

	cleaned := path.Clean(strings.ReplaceAll(filename, "\\", "/"))
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", fmt.Errorf("path traversal not allowed: %s", filename)
		}
	}

	base := path.Base(cleaned)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}
	return base, nil
}

// shouldSkip reports whether an entry is OS metadata: any path segment is a
// known junk name or an AppleDouble "._" file.
func shouldSkip(entryName string) bool {
	for _, part := range strings.Split(strings.ReplaceAll(entryName, "\\", "/"), "/") {
		if strings.HasPrefix(part, "._") || slices.Contains(skipNames, part) {
			return true
		}
	}
	return false
}

func (o Options) allowed(name string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range o.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
