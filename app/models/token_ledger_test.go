package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemind/VerseMind/internal/pkg/entitlements"
)

func TestNewTokenLedger(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	l := NewTokenLedger("user:1", entitlements.PlanFree, now)

	require.NotNil(t, l)
	assert.Equal(t, "user:1", l.Identifier)
	assert.Equal(t, "free", l.Plan)
	assert.Equal(t, entitlements.FreeDailyTokens, l.AvailableTokens)
	assert.Equal(t, entitlements.FreeDailyTokens, l.DailyLimit)
	assert.Equal(t, 0, l.PurchasedTokens)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), l.LastReset)
}

func TestNeedsReset(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{
			name: "same UTC day",
			last: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC),
			want: false,
		},
		{
			name: "next UTC day",
			last: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC),
			want: true,
		},
		{
			name: "same moment in a non-UTC zone is still the same UTC date",
			last: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 10, 20, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want: true, // 20:00 UTC-5 is already 2025-03-11 01:00 UTC
		},
		{
			name: "clock moved backwards does not trigger a reset",
			last: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &TokenLedger{LastReset: tt.last}
			assert.Equal(t, tt.want, l.NeedsReset(tt.now))
		})
	}
}

func TestTotalAvailable(t *testing.T) {
	l := &TokenLedger{AvailableTokens: 15, PurchasedTokens: 50}
	assert.Equal(t, 65, l.TotalAvailable())
}
