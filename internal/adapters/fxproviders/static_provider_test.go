package fxproviders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andeserp/fxcore_backend/internal/apperrors"
)

func TestStaticProviderAnchorRates(t *testing.T) {
	p := NewStaticProvider(nil)
	ctx := context.Background()

	rate, err := p.GetRate(ctx, "USD", "VES", nil)
	require.NoError(t, err)
	assert.True(t, rate.Value.Equal(decimal.RequireFromString("36.50")))
	assert.Equal(t, "static", rate.Provider)

	inverse, err := p.GetRate(ctx, "VES", "USD", nil)
	require.NoError(t, err)

	// The two directions must be reciprocal within rounding tolerance.
	product := rate.Value.Mul(inverse.Value)
	diff := product.Sub(decimal.NewFromInt(1)).Abs()
	assert.True(t, diff.LessThan(decimal.RequireFromString("0.00000001")),
		"expected reciprocal consistency, got product %s", product)
}

func TestStaticProviderIdentity(t *testing.T) {
	p := NewStaticProvider(nil)

	rate, err := p.GetRate(context.Background(), "USD", "USD", nil)
	require.NoError(t, err)
	assert.True(t, rate.Value.Equal(decimal.NewFromInt(1)))
}

func TestStaticProviderTriangulation(t *testing.T) {
	p := NewStaticProvider(nil)

	rate, err := p.GetRate(context.Background(), "EUR", "USD", nil)
	require.NoError(t, err)

	// 39.80 VES/EUR over 36.50 VES/USD.
	expected := decimal.RequireFromString("39.80").DivRound(decimal.RequireFromString("36.50"), 10)
	assert.True(t, rate.Value.Equal(expected), "expected %s, got %s", expected, rate.Value)
}

func TestStaticProviderUnsupportedPair(t *testing.T) {
	p := NewStaticProvider(nil)

	_, err := p.GetRate(context.Background(), "USD", "JPY", nil)
	assert.Error(t, err)
}

func TestStaticProviderRejectsHistoricalDate(t *testing.T) {
	p := NewStaticProvider(nil)

	yesterday := time.Now().AddDate(0, 0, -2)
	_, err := p.GetRate(context.Background(), "USD", "VES", &yesterday)
	assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)

	today := time.Now()
	_, err = p.GetRate(context.Background(), "USD", "VES", &today)
	assert.NoError(t, err)
}

func TestStaticProviderSetRate(t *testing.T) {
	p := NewStaticProvider(nil)
	p.SetRate("USD", decimal.RequireFromString("37.00"))

	rate, err := p.GetRate(context.Background(), "USD", "VES", nil)
	require.NoError(t, err)
	assert.True(t, rate.Value.Equal(decimal.RequireFromString("37.00")))
}

func TestParseBCVNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"36,50", "36.50"},
		{"1.234,56", "1234.56"},
		{" 39,8012 ", "39.8012"},
	}
	for _, tt := range tests {
		got, err := parseBCVNumber(tt.raw)
		require.NoError(t, err, "raw %q", tt.raw)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "raw %q: expected %s, got %s", tt.raw, tt.want, got)
	}
}
