package charset

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func encode(t *testing.T, cm *charmap.Charmap, s string) []byte {
	t.Helper()
	b, err := cm.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, EncodingUTF8, DetectEncoding([]byte("brânză;pâine")))
	assert.Equal(t, EncodingUTF8, DetectEncoding([]byte("\xEF\xBB\xBFid;name")))
	assert.Equal(t, EncodingWindows1250, DetectEncoding(encode(t, charmap.Windows1250, "brânză şi ţuică")))
	assert.Equal(t, EncodingISO88592, DetectEncoding([]byte{'c', 0xE9, 'a'}))
}

func TestDecode(t *testing.T) {
	want := "brânză şi ţuică"

	got, err := Decode(encode(t, charmap.Windows1250, want), "")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Decode(encode(t, charmap.ISO8859_2, "brânză"), EncodingISO88592)
	require.NoError(t, err)
	assert.Equal(t, "brânză", got)

	got, err = Decode([]byte("\xEF\xBB\xBFprice"), "")
	require.NoError(t, err)
	assert.Equal(t, "price", got)

	// Mislabelled UTF-8 is passed through untouched.
	got, err = Decode([]byte(want), EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Decode([]byte{0xFF}, Encoding("koi8-r"))
	assert.Error(t, err)
}

func TestToUTF8Reader(t *testing.T) {
	r, err := ToUTF8Reader(strings.NewReader(string(encode(t, charmap.ISO8859_16, "ș"))), EncodingISO885916)
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ș", string(out))
}
