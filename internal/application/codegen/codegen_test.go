package codegen

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	g := &Generator{Now: func() time.Time { return time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC) }}
	code, err := g.Generate()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "CERT-20260309-"))
	assert.Len(t, code, len("CERT-20260309-")+SuffixLength)
	assert.True(t, Valid(code))
}

func TestGenerate_UsesUTCDate(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	g := &Generator{Now: func() time.Time { return time.Date(2026, 3, 9, 22, 30, 0, 0, loc) }}
	code, err := g.Generate()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "CERT-20260310-"))
}

func TestGenerate_Unique(t *testing.T) {
	g := &Generator{}
	seen := make(map[string]struct{}, 2000)
	for i := 0; i < 2000; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
}

func TestGenerate_RejectsBiasedBytes(t *testing.T) {
	// 0xFF bytes are above the rejection threshold and must be skipped.
	src := bytes.NewReader(append(bytes.Repeat([]byte{0xFF}, 40), bytes.Repeat([]byte{0}, 40)...))
	g := &Generator{Rand: src, Now: time.Now}
	code, err := g.Generate()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(code, strings.Repeat("A", SuffixLength)))
}

func TestGenerate_ShortRandom(t *testing.T) {
	g := &Generator{Rand: bytes.NewReader([]byte{1, 2, 3})}
	_, err := g.Generate()
	assert.ErrorIs(t, err, ErrShortRandom)
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("CERT-1"))
	assert.False(t, Valid("CERT-20260101-abc"))
	assert.False(t, Valid("CERT-20260101-AAAAAAAAAAAAAAAAAAA/"))
	assert.False(t, Valid("XERT-20260101-AAAAAAAAAAAAAAAAAAAA"))
	assert.True(t, Valid("CERT-20260101-AAAAAAAAAAAAAAAAAAAA"))
}
