package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("20240229")
	require.NoError(t, err)

	assert.Equal(t, NewDate(2024, time.February, 29), d)
	assert.Equal(t, "20240229", d.String())
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-02-29", "20230229", "2024021", "abcdefgh"} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2023, time.December, 31)

	assert.Equal(t, NewDate(2024, time.January, 1), d.AddDays(1))
	assert.Equal(t, NewDate(2023, time.December, 24), d.AddDays(-7))
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2024, time.March, 1)
	b := NewDate(2024, time.March, 2)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, Date{}.IsZero())
}
