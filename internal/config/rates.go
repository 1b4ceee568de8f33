package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RatesConfig maps currency codes to multipliers into the canonical currency.
type RatesConfig struct {
	Canonical string             `mapstructure:"canonical"`
	Rates     map[string]float64 `mapstructure:"rates"`
}

func DefaultRatesConfig() RatesConfig {
	return RatesConfig{
		Canonical: "PLN",
		Rates: map[string]float64{
			"PLN": 1,
			"EUR": 4.25,
			"USD": 4.05,
		},
	}
}

// RatesHolder exposes the current exchange-rate table and hot-reloads it when
// the backing file changes.
type RatesHolder struct {
	current atomic.Value // holds RatesConfig
}

func NewRatesHolder() (*RatesHolder, error) {
	v := viper.New()

	v.SetConfigName("rates")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/ledgerline/config") // Volume-mounted config
	v.AddConfigPath("/etc/ledgerline")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("LEDGERLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg := DefaultRatesConfig()
	if fileFound {
		if err := v.UnmarshalKey("currency", &cfg); err != nil {
			return nil, err
		}
		if err := validateRatesConfig(cfg); err != nil {
			return nil, err
		}
	}

	holder := &RatesHolder{}
	holder.current.Store(normalizeRates(cfg))

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated RatesConfig
			if err := v.UnmarshalKey("currency", &updated); err != nil {
				log.Printf("[rates-config] reload failed: %v", err)
				return
			}
			if err := validateRatesConfig(updated); err != nil {
				log.Printf("[rates-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(normalizeRates(updated))
			log.Printf("[rates-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// NewStaticRatesHolder wraps a fixed rate table with no file watching.
func NewStaticRatesHolder(cfg RatesConfig) *RatesHolder {
	holder := &RatesHolder{}
	holder.current.Store(normalizeRates(cfg))
	return holder
}

func (h *RatesHolder) Get() RatesConfig {
	return h.current.Load().(RatesConfig)
}

func validateRatesConfig(cfg RatesConfig) error {
	if strings.TrimSpace(cfg.Canonical) == "" {
		return errors.New("currency.canonical cannot be empty")
	}
	if len(cfg.Rates) == 0 {
		return errors.New("currency.rates cannot be empty")
	}
	for code, rate := range cfg.Rates {
		if rate <= 0 {
			return errors.New("currency.rates must be positive: " + code)
		}
	}
	return nil
}

func normalizeRates(cfg RatesConfig) RatesConfig {
	normalized := RatesConfig{
		Canonical: strings.ToUpper(strings.TrimSpace(cfg.Canonical)),
		Rates:     make(map[string]float64, len(cfg.Rates)),
	}
	for code, rate := range cfg.Rates {
		normalized.Rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return normalized
}
