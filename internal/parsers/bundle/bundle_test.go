package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExpand(t *testing.T) {
	files := map[string]string{
		"week19/lidl_2025-05-01.csv":           "a",
		"week19/lidl_discounts_2025-05-01.csv": "b",
		"__MACOSX/._lidl_2025-05-01.csv":       "junk",
		"readme.txt":                           "c",
		"../evil_2025-05-01.csv":               "d",
	}
	order := []string{
		"week19/lidl_2025-05-01.csv",
		"__MACOSX/._lidl_2025-05-01.csv",
		"readme.txt",
		"../evil_2025-05-01.csv",
		"week19/lidl_discounts_2025-05-01.csv",
	}

	entries, err := Expand(context.Background(), buildZip(t, files, order), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "lidl_2025-05-01.csv", entries[0].Name)
	assert.Equal(t, "a", string(entries[0].Content))
	assert.Equal(t, "lidl_discounts_2025-05-01.csv", entries[1].Name)
}

func TestExpandSkipsMetadata(t *testing.T) {
	files := map[string]string{
		"._lidl_2025-05-01.csv":                "resource fork",
		"week19/.DS_Store":                     "x",
		"__MACOSX/week19/profi_2025-05-01.csv": "y",
		"week19/profi_2025-05-01.csv":          "z",
	}
	order := []string{
		"._lidl_2025-05-01.csv",
		"week19/.DS_Store",
		"__MACOSX/week19/profi_2025-05-01.csv",
		"week19/profi_2025-05-01.csv",
	}

	entries, err := Expand(context.Background(), buildZip(t, files, order), Options{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "profi_2025-05-01.csv", entries[0].Name)
	assert.Equal(t, "z", string(entries[0].Content))
}

func TestShouldSkip(t *testing.T) {
	assert.True(t, shouldSkip("__MACOSX/._lidl_2025-05-01.csv"))
	assert.True(t, shouldSkip(`data\Thumbs.db`))
	assert.False(t, shouldSkip("week19/lidl_2025-05-01.csv"))
	assert.False(t, shouldSkip("lidl_macosx_2025-05-01.csv"))
}

func TestExpandLimits(t *testing.T) {
	content := buildZip(t, map[string]string{"a.csv": "12345", "b.csv": "678"}, []string{"a.csv", "b.csv"})

	_, err := Expand(context.Background(), content, Options{MaxFileSize: 4})
	assert.ErrorContains(t, err, "exceeds maximum size")

	_, err = Expand(context.Background(), content, Options{MaxTotalSize: 6})
	assert.ErrorContains(t, err, "total extracted size")

	_, err = Expand(context.Background(), content, Options{MaxFiles: 1})
	assert.ErrorContains(t, err, "too many files")

	_, err = Expand(context.Background(), []byte("not a zip"), DefaultOptions())
	assert.Error(t, err)
}

func TestIsBundle(t *testing.T) {
	assert.True(t, IsBundle("lidl_2025-05-01.ZIP"))
	assert.False(t, IsBundle("lidl_2025-05-01.csv"))
}
