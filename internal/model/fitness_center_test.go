package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricePerSession(t *testing.T) {
	testCases := []struct {
		name     string
		fee      int64
		sessions int64
		want     float64
	}{
		{name: "1000 over 8", fee: 1000, sessions: 8, want: 125.0},
		{name: "1500 over 12", fee: 1500, sessions: 12, want: 125.0},
		{name: "1200 over 10", fee: 1200, sessions: 10, want: 120.0},
		{name: "not truncated", fee: 1000, sessions: 3, want: 1000.0 / 3.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fc := FitnessCenter{MonthlyFee: tc.fee, TotalSessions: tc.sessions}
			got, err := fc.PricePerSession()
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestPricePerSession_NonPositiveSessions(t *testing.T) {
	for _, sessions := range []int64{0, -4} {
		fc := FitnessCenter{MonthlyFee: 1000, TotalSessions: sessions}
		got, err := fc.PricePerSession()
		assert.ErrorIs(t, err, ErrInvalidSessionCount)
		assert.Zero(t, got)
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("YOGA")
	require.NoError(t, err)
	assert.Equal(t, CategoryYoga, c)

	_, err = ParseCategory("yoga")
	assert.ErrorIs(t, err, ErrInvalidCategory, "matching is case-sensitive")

	_, err = ParseCategory("BOXING")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	assert.True(t, CategorySwimming.Valid())
	assert.False(t, Category("").Valid())
}
