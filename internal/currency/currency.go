// Package currency converts amounts between the registered currencies.
// The first configured currency is the primary one; all conversion rates
// are expressed as the value of one unit in the primary currency.
package currency

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/result"
)

// overflowLimit caps the magnitude of a converted fixed-point amount.
// Results at or beyond the limit degrade to zero instead of propagating
// garbage.
var overflowLimit = decimal.New(1, 28)

// Converted is an amount expressed in one currency, together with the
// formatting info of that currency.
type Converted struct {
	Code          string
	Amount        decimal.Decimal
	DecimalPlaces int
	FormatPrefix  string
	FormatSuffix  string
}

// Currency reads conversion rates from the dataset on demand, so a rate
// update is visible to the next conversion without any reload.
type Currency struct {
	logger        *slog.Logger
	dataset       *dataset.Dataset
	codes         []string
	primaryPlaces int
}

// New builds a converter over the configured currency codes. The first
// code is the primary currency and must be registered in the dataset
// with its decimal places.
func New(logger *slog.Logger, ds *dataset.Dataset, codes []string) (*Currency, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("currency: no currency codes configured")
	}
	primary := ds.CurrencyInfo(codes[:1])[0]
	if primary.DecimalPlaces == nil {
		return nil, fmt.Errorf("currency: primary currency %q is not registered", codes[0])
	}
	return &Currency{
		logger:        logger,
		dataset:       ds,
		codes:         codes,
		primaryPlaces: *primary.DecimalPlaces,
	}, nil
}

// DecimalPlaces reports the decimal places of the primary currency.
func (c *Currency) DecimalPlaces() int { return c.primaryPlaces }

// Info returns the registered info of all configured currencies, primary
// first.
func (c *Currency) Info() []dataset.CurrencyInfo {
	return c.dataset.CurrencyInfo(c.codes)
}

// UpdateInfo writes new conversion rates. The primary currency rate is
// fixed at one; any attempt to change it is rejected before the dataset
// is touched.
func (c *Currency) UpdateInfo(list []dataset.CurrencyInfo) result.Result {
	if len(list) > 0 {
		rate := list[0].AmountInPrimary
		if rate != nil && !rate.Equal(decimal.NewFromInt(1)) {
			c.logger.Error("update currency info: primary rate must be 1",
				"code", list[0].Code, "rate", rate.String())
			return result.PrimaryRateInvalid
		}
	}
	return c.dataset.UpdateCurrencyInfo(list)
}

// ConvertToAll expresses an amount in every configured currency, primary
// first. A currency with a missing or non-positive rate converts to zero.
func (c *Currency) ConvertToAll(amount decimal.Decimal) []Converted {
	return c.convert(amount, c.Info())
}

func (c *Currency) convert(amount decimal.Decimal, infos []dataset.CurrencyInfo) []Converted {
	converted := make([]Converted, 0, len(infos))
	for _, info := range infos {
		out := Converted{
			Code:         info.Code,
			FormatPrefix: info.FormatPrefix,
			FormatSuffix: info.FormatSuffix,
		}
		if info.DecimalPlaces != nil {
			out.DecimalPlaces = *info.DecimalPlaces
		}
		out.Amount = c.convertOne(amount, info)
		converted = append(converted, out)
	}
	return converted
}

func (c *Currency) convertOne(amount decimal.Decimal, info dataset.CurrencyInfo) decimal.Decimal {
	if info.AmountInPrimary == nil || !info.AmountInPrimary.IsPositive() {
		return decimal.Zero
	}
	places := int32(0)
	if info.DecimalPlaces != nil {
		places = int32(*info.DecimalPlaces)
	}

	// Fixed point arithmetic keeps the half-up rounding at the last
	// valid decimal place of the target currency.
	fixed := amount.Shift(places).DivRound(*info.AmountInPrimary, 0)
	if fixed.Abs().Cmp(overflowLimit) >= 0 {
		c.logger.Error("convert: amount overflows the target currency, returning zero",
			"amount", amount.String(), "currency", info.Code)
		return decimal.Zero
	}
	return fixed.Shift(-places)
}

// RoundInPrimary rounds an amount to the valid decimal places of the
// primary currency, halves away from zero.
func (c *Currency) RoundInPrimary(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(int32(c.primaryPlaces))
}
