package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
)

type currencyPair struct {
	from Currency
	to   Currency
}

// Converter performs fixed-rate cross-currency conversion. Rates are
// static configuration; there are no live FX lookups. An unknown pair is
// a hard error rather than a silent pass-through, so a missing rate
// surfaces immediately instead of corrupting valuations.
type Converter struct {
	rates map[currencyPair]decimal.Decimal
}

// NewConverter builds a converter from "FROM->TO" rate entries, deriving
// the inverse of each pair automatically when it is not listed.
func NewConverter(rates map[string]float64) (*Converter, error) {
	c := &Converter{rates: make(map[currencyPair]decimal.Decimal)}
	for key, rate := range rates {
		from, to, err := parsePairKey(key)
		if err != nil {
			return nil, err
		}
		if rate <= 0 {
			return nil, fmt.Errorf("rate %s must be positive, got %v", key, rate)
		}
		c.rates[currencyPair{from, to}] = decimal.NewFromFloat(rate)
	}
	for pair, rate := range c.rates {
		inverse := currencyPair{pair.to, pair.from}
		if _, ok := c.rates[inverse]; !ok {
			c.rates[inverse] = decimal.NewFromInt(1).Div(rate)
		}
	}
	return c, nil
}

// DefaultRates cover the scanner's three markets, quoted against GBP.
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"GBP->INR": 105.0,
		"GBP->USD": 1.25,
		"USD->INR": 84.0,
	}
}

// Convert expresses amount in the target currency. Same-currency
// conversion is the identity.
func (c *Converter) Convert(amount float64, from, to Currency) (float64, error) {
	if from == to {
		return amount, nil
	}
	rate, ok := c.rates[currencyPair{from, to}]
	if !ok {
		return 0, fmt.Errorf("no conversion rate for %s->%s", from, to)
	}
	return decimal.NewFromFloat(amount).Mul(rate).InexactFloat64(), nil
}

// CanConvert reports whether the pair is covered by the rate table.
func (c *Converter) CanConvert(from, to Currency) bool {
	if from == to {
		return true
	}
	_, ok := c.rates[currencyPair{from, to}]
	return ok
}

func parsePairKey(key string) (Currency, Currency, error) {
	var from, to string
	if _, err := fmt.Sscanf(key, "%3s->%3s", &from, &to); err != nil || len(from) != 3 || len(to) != 3 {
		return "", "", fmt.Errorf("malformed rate key %q, want FROM->TO", key)
	}
	return Currency(from), Currency(to), nil
}
