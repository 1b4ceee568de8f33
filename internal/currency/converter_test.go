package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerline/internal/config"
)

func newTestConverter() *Converter {
	holder := config.NewStaticRatesHolder(config.RatesConfig{
		Canonical: "PLN",
		Rates: map[string]float64{
			"PLN": 1,
			"EUR": 4.25,
			"USD": 4.05,
		},
	})
	return NewConverter(holder, zap.NewNop())
}

func TestRateFor(t *testing.T) {
	conv := newTestConverter()

	tests := []struct {
		code string
		want string
	}{
		{"PLN", "1"},
		{"EUR", "4.25"},
		{"USD", "4.05"},
		{"eur", "4.25"},
		{" usd ", "4.05"},
		{"XYZ", "1"},
		{"", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := conv.RateFor(tt.code)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestKnown(t *testing.T) {
	conv := newTestConverter()

	assert.True(t, conv.Known("PLN"))
	assert.True(t, conv.Known("eur"))
	assert.False(t, conv.Known("XYZ"))
	assert.False(t, conv.Known(""))
}

func TestCanonical(t *testing.T) {
	conv := newTestConverter()
	assert.Equal(t, "PLN", conv.Canonical())
}
