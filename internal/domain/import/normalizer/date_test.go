package normalizer

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical passes through", "15/03/2024", "15/03/2024"},
		{"iso reordered", "2024-03-15", "15/03/2024"},
		{"iso with time", "2024-03-15T10:30:00", "15/03/2024"},
		{"loose dashes padded", "5-3-2024", "05/03/2024"},
		{"loose dots", "15.03.2024", "15/03/2024"},
		{"embedded in text", "Data: 1/12/2023", "01/12/2023"},
		{"surrounding spaces", "  15/03/2024 ", "15/03/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "ontem", "2024/03", "31/02/2024", "00/01/2024", "15/13/2024"} {
		t.Run(raw, func(t *testing.T) {
			_, err := NormalizeDate(raw)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestNormalizeDate_RoundTrip(t *testing.T) {
	faker := gofakeit.New(7)
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2040, 12, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		d := faker.DateRange(start, end)

		fromISO, err := NormalizeDate(d.Format("2006-01-02"))
		require.NoError(t, err)
		fromCanonical, err := NormalizeDate(d.Format(CanonicalDateLayout))
		require.NoError(t, err)

		assert.Equal(t, fromCanonical, fromISO)
		assert.Equal(t, d.Format(CanonicalDateLayout), fromISO)
	}
}

func TestTimestamp(t *testing.T) {
	ts := Timestamp("15/03/2024")
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, Location).UnixMilli(), ts)

	assert.Less(t, Timestamp("14/03/2024"), ts)
	assert.Zero(t, Timestamp("2024-03-15"))
	assert.Zero(t, Timestamp("aa/bb/cccc"))
}

func TestLooksLikeDate(t *testing.T) {
	assert.True(t, LooksLikeDate("2024-03-15"))
	assert.True(t, LooksLikeDate("15/03/2024"))
	assert.False(t, LooksLikeDate("5/3/2024"))
	assert.False(t, LooksLikeDate("PADARIA"))
}

func TestDateParts(t *testing.T) {
	assert.Equal(t, "2024", Year("15/03/2024"))
	assert.Equal(t, "03/2024", MonthKey("15/03/2024"))
	assert.Empty(t, Year("bad"))
	assert.Empty(t, MonthKey("bad"))
}
