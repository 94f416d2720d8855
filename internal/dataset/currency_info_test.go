package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artkeep/artkeep/internal/record"
	"github.com/artkeep/artkeep/internal/result"
)

func seedCurrencies(t *testing.T, d *Dataset) {
	t.Helper()
	rows := []record.Row{
		{ColCurrencyCode: "czk", ColAmountInPrimary: "1", ColDecimalPlaces: "0", ColFormatSuffix: " Kč"},
		{ColCurrencyCode: "eur", ColAmountInPrimary: "27.13", ColDecimalPlaces: "2", ColFormatPrefix: "€"},
		{ColCurrencyCode: "usd", ColAmountInPrimary: "19.71", ColDecimalPlaces: "2", ColFormatPrefix: "$"},
	}
	for _, row := range rows {
		require.True(t, d.currency.Insert(row, ColCurrencyCode))
	}
}

func TestCurrencyInfoOrdering(t *testing.T) {
	d := newTestDataset(t)
	seedCurrencies(t, d)

	infos := d.CurrencyInfo([]string{"usd", "czk"})
	require.Len(t, infos, 2)
	assert.Equal(t, "usd", infos[0].Code)
	assert.Equal(t, "czk", infos[1].Code)
	require.NotNil(t, infos[0].AmountInPrimary)
	assert.Equal(t, "19.71", infos[0].AmountInPrimary.String())
	require.NotNil(t, infos[0].DecimalPlaces)
	assert.Equal(t, 2, *infos[0].DecimalPlaces)
	assert.Equal(t, "$", infos[0].FormatPrefix)
	assert.Equal(t, " Kč", infos[1].FormatSuffix)
}

func TestCurrencyInfoUnknownCode(t *testing.T) {
	d := newTestDataset(t)
	seedCurrencies(t, d)

	infos := d.CurrencyInfo([]string{"czk", "gbp"})
	require.Len(t, infos, 2)
	assert.Equal(t, "gbp", infos[1].Code)
	assert.Nil(t, infos[1].AmountInPrimary)
	assert.Nil(t, infos[1].DecimalPlaces)
}

func TestUpdateCurrencyInfo(t *testing.T) {
	d := newTestDataset(t)
	seedCurrencies(t, d)

	res := d.UpdateCurrencyInfo([]CurrencyInfo{
		{Code: "eur", AmountInPrimary: decPtr("27.50")},
		{Code: "usd", AmountInPrimary: decPtr("20.05")},
	})
	assert.Equal(t, result.Success, res)

	infos := d.CurrencyInfo([]string{"eur", "usd"})
	assert.Equal(t, "27.5", infos[0].AmountInPrimary.String())
	assert.Equal(t, "20.05", infos[1].AmountInPrimary.String())
}

func TestUpdateCurrencyInfoEmpty(t *testing.T) {
	d := newTestDataset(t)
	assert.Equal(t, result.Success, d.UpdateCurrencyInfo(nil))
}

func TestUpdateCurrencyInfoValidatesBeforeWriting(t *testing.T) {
	d := newTestDataset(t)
	seedCurrencies(t, d)

	res := d.UpdateCurrencyInfo([]CurrencyInfo{
		{Code: "eur", AmountInPrimary: decPtr("30")},
		{Code: "usd"},
	})
	assert.Equal(t, result.InputError, res)

	// The valid entry before the bad one must not have been applied.
	infos := d.CurrencyInfo([]string{"eur"})
	assert.Equal(t, "27.13", infos[0].AmountInPrimary.String())

	res = d.UpdateCurrencyInfo([]CurrencyInfo{{AmountInPrimary: decPtr("30")}})
	assert.Equal(t, result.InputError, res)
}

func TestUpdateCurrencyInfoUnregisteredCode(t *testing.T) {
	d := newTestDataset(t)
	seedCurrencies(t, d)

	res := d.UpdateCurrencyInfo([]CurrencyInfo{
		{Code: "eur", AmountInPrimary: decPtr("30")},
		{Code: "gbp", AmountInPrimary: decPtr("35")},
	})
	assert.Equal(t, result.PartialSuccess, res)

	infos := d.CurrencyInfo([]string{"eur"})
	assert.Equal(t, "30", infos[0].AmountInPrimary.String())
}
