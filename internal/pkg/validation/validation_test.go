package validation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ops@padaria.com.br"))
	assert.False(t, IsValidEmail("ops@padaria"))
	assert.False(t, IsValidEmail("no spaces@x.com"))
}

func TestParseUUIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ids, err := ParseUUIDList([]string{a.String(), " " + b.String() + " "})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = ParseUUIDList([]string{a.String(), "nope"})
	assert.ErrorContains(t, err, `"nope"`)

	_, err = ParseUUIDList(make([]string, MaxSelection+1))
	assert.ErrorIs(t, err, ErrTooManyIDs)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("", false)
	require.NoError(t, err)
	assert.Nil(t, d)

	from, err := ParseDate("2026-03-02", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *from)

	to, err := ParseDate("2026-03-02", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 23, 59, 59, 999999999, time.UTC), *to)

	_, err = ParseDate("02/03/2026", false)
	assert.ErrorIs(t, err, ErrBadDate)
}
