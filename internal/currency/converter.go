// Package currency normalizes transaction amounts into the canonical
// reporting currency.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerline/internal/config"
)

// Converter maps currency codes to multipliers into the canonical currency.
// The rate table is hot-reloadable through the config holder.
type Converter struct {
	holder *config.RatesHolder
	log    *zap.Logger
}

func NewConverter(holder *config.RatesHolder, log *zap.Logger) *Converter {
	return &Converter{
		holder: holder,
		log:    log.Named("currency.converter"),
	}
}

// RateFor returns the multiplier for code. Unrecognized codes fall back to 1
// and emit a warning; totals over such records are taken at face value.
func (c *Converter) RateFor(code string) decimal.Decimal {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if rate, ok := c.holder.Get().Rates[normalized]; ok {
		return decimal.NewFromFloat(rate)
	}

	c.log.Warn("currency not found, using default rate of 1",
		zap.String("currency", code),
	)
	return decimal.NewFromInt(1)
}

// Known reports whether code has a configured rate.
func (c *Converter) Known(code string) bool {
	_, ok := c.holder.Get().Rates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Canonical returns the currency code all converted totals are expressed in.
func (c *Converter) Canonical() string {
	return c.holder.Get().Canonical
}

var Module = fx.Module("currency",
	fx.Provide(NewConverter),
)
