package dataset

import (
	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/record"
	"github.com/artkeep/artkeep/internal/result"
)

// Currency table column names.
const (
	ColCurrencyCode    = "Code"
	ColAmountInPrimary = "AmountInPrimary"
	ColDecimalPlaces   = "DecimalPlaces"
	ColFormatPrefix    = "FormatPrefix"
	ColFormatSuffix    = "FormatSuffix"
)

var currencyColumns = []string{
	ColAmountInPrimary, ColCurrencyCode, ColDecimalPlaces,
	ColFormatPrefix, ColFormatSuffix,
}

// CurrencyInfo is one registered currency. AmountInPrimary is the value
// of one unit expressed in the primary currency; the primary currency
// itself has a rate of 1. FormatPrefix and FormatSuffix are display-only.
type CurrencyInfo struct {
	Code            string
	AmountInPrimary *decimal.Decimal
	DecimalPlaces   *int
	FormatPrefix    string
	FormatSuffix    string
}

func currencyInfoFromRow(row record.Row) CurrencyInfo {
	info := CurrencyInfo{
		Code:         row[ColCurrencyCode],
		FormatPrefix: row[ColFormatPrefix],
		FormatSuffix: row[ColFormatSuffix],
	}
	info.AmountInPrimary = parseDecimalPtr(row[ColAmountInPrimary])
	if places, ok := parseInt(row[ColDecimalPlaces]); ok {
		info.DecimalPlaces = &places
	}
	return info
}

// CurrencyInfo returns the registered info for the given currency codes,
// in the caller-supplied order. Unknown codes come back with only the
// code set.
func (d *Dataset) CurrencyInfo(codes []string) []CurrencyInfo {
	rows := d.currency.Select(currencyColumns,
		record.In{Field: ColCurrencyCode, Values: codes})
	byCode := make(map[string]CurrencyInfo, len(rows))
	for _, row := range rows {
		info := currencyInfoFromRow(row)
		byCode[info.Code] = info
	}

	ordered := make([]CurrencyInfo, 0, len(codes))
	for _, code := range codes {
		if info, ok := byCode[code]; ok {
			ordered = append(ordered, info)
		} else {
			ordered = append(ordered, CurrencyInfo{Code: code})
		}
	}
	return ordered
}

// UpdateCurrencyInfo writes new conversion rates. Every entry must carry
// a code and a valid rate before any of them is applied; entries that do
// not match a registered currency are skipped and reported as a partial
// success.
func (d *Dataset) UpdateCurrencyInfo(list []CurrencyInfo) result.Result {
	if len(list) == 0 {
		return result.Success
	}

	for _, info := range list {
		if info.Code == "" {
			d.logger.Error("update currency info: entry has no code")
			return result.InputError
		}
		if info.AmountInPrimary == nil {
			d.logger.Error("update currency info: entry has no valid rate", "code", info.Code)
			return result.InputError
		}
	}

	updated := 0
	for _, info := range list {
		values := FieldValues{ColAmountInPrimary: SetDecimal(*info.AmountInPrimary)}
		if d.currency.Update(values, record.Equals{Field: ColCurrencyCode, Value: info.Code}) == 1 {
			updated++
		} else {
			d.logger.Error("update currency info: currency not registered, skipping",
				"code", info.Code)
		}
	}

	if updated == len(list) {
		return result.Success
	}
	return result.PartialSuccess
}
