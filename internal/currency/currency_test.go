package currency

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/result"
)

const currencyFixture = `<?xml version="1.0" encoding="UTF-8"?>
<CurrencyList>
  <Currency>
    <AmountInPrimary>1</AmountInPrimary>
    <Code>czk</Code>
    <DecimalPlaces>0</DecimalPlaces>
    <FormatSuffix> Kc</FormatSuffix>
  </Currency>
  <Currency>
    <AmountInPrimary>27.13</AmountInPrimary>
    <Code>eur</Code>
    <DecimalPlaces>2</DecimalPlaces>
    <FormatPrefix>EUR </FormatPrefix>
  </Currency>
  <Currency>
    <AmountInPrimary>19.71</AmountInPrimary>
    <Code>usd</Code>
    <DecimalPlaces>2</DecimalPlaces>
    <FormatPrefix>$</FormatPrefix>
  </Currency>
</CurrencyList>`

func newTestCurrency(t *testing.T) *Currency {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, dataset.DefaultCurrencyFile), []byte(currencyFixture), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds := dataset.New(logger, dir)
	require.NoError(t, ds.Restore())

	c, err := New(logger, ds, []string{"czk", "eur", "usd"})
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewRejectsBadConfiguration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds := dataset.New(logger, t.TempDir())

	_, err := New(logger, ds, nil)
	assert.Error(t, err)

	// The primary currency must be registered with its decimal places.
	_, err = New(logger, ds, []string{"czk"})
	assert.Error(t, err)
}

func TestConvertToAll(t *testing.T) {
	c := newTestCurrency(t)

	tests := []struct {
		amount string
		czk    string
		eur    string
		usd    string
	}{
		{"154", "154", "5.68", "7.81"},
		{"-154", "-154", "-5.68", "-7.81"},
		{"100", "100", "3.69", "5.07"},
		{"220", "220", "8.11", "11.16"},
		{"0", "0", "0", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			converted := c.ConvertToAll(dec(tc.amount))
			require.Len(t, converted, 3)
			assert.Equal(t, "czk", converted[0].Code)
			assert.True(t, converted[0].Amount.Equal(dec(tc.czk)),
				"czk: got %s", converted[0].Amount)
			assert.True(t, converted[1].Amount.Equal(dec(tc.eur)),
				"eur: got %s", converted[1].Amount)
			assert.True(t, converted[2].Amount.Equal(dec(tc.usd)),
				"usd: got %s", converted[2].Amount)
		})
	}
}

func TestConvertToAllCarriesFormatting(t *testing.T) {
	c := newTestCurrency(t)

	assert.Equal(t, 0, c.DecimalPlaces())

	converted := c.ConvertToAll(dec("154"))
	require.Len(t, converted, 3)
	assert.Equal(t, 0, converted[0].DecimalPlaces)
	assert.Equal(t, " Kc", converted[0].FormatSuffix)
	assert.Equal(t, 2, converted[1].DecimalPlaces)
	assert.Equal(t, "EUR ", converted[1].FormatPrefix)
	assert.Equal(t, "$", converted[2].FormatPrefix)
}

func TestConvertOverflowDegradesToZero(t *testing.T) {
	c := newTestCurrency(t)

	converted := c.ConvertToAll(dec("1E+30"))
	require.Len(t, converted, 3)
	for _, out := range converted {
		assert.True(t, out.Amount.IsZero(), "%s: got %s", out.Code, out.Amount)
	}
}

func TestConvertOneInvalidRate(t *testing.T) {
	c := newTestCurrency(t)
	places := 2

	assert.True(t, c.convertOne(dec("100"), dataset.CurrencyInfo{
		Code: "gbp", DecimalPlaces: &places,
	}).IsZero())

	zero := decimal.Zero
	assert.True(t, c.convertOne(dec("100"), dataset.CurrencyInfo{
		Code: "gbp", AmountInPrimary: &zero, DecimalPlaces: &places,
	}).IsZero())

	negative := dec("-2")
	assert.True(t, c.convertOne(dec("100"), dataset.CurrencyInfo{
		Code: "gbp", AmountInPrimary: &negative, DecimalPlaces: &places,
	}).IsZero())
}

func TestRoundInPrimary(t *testing.T) {
	c := newTestCurrency(t)

	tests := []struct {
		amount string
		want   string
	}{
		{"10.543", "11"},
		{"10.541", "11"},
		{"10.1", "10"},
		{"19.995", "20"},
		{"-10.541", "-11"},
		{"0", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			got := c.RoundInPrimary(dec(tc.amount))
			assert.True(t, got.Equal(dec(tc.want)), "got %s", got)
		})
	}
}

func TestUpdateInfoGuardsPrimaryRate(t *testing.T) {
	c := newTestCurrency(t)

	two := dec("2")
	res := c.UpdateInfo([]dataset.CurrencyInfo{{Code: "czk", AmountInPrimary: &two}})
	assert.Equal(t, result.PrimaryRateInvalid, res)

	one := dec("1")
	thirty := dec("30")
	res = c.UpdateInfo([]dataset.CurrencyInfo{
		{Code: "czk", AmountInPrimary: &one},
		{Code: "eur", AmountInPrimary: &thirty},
	})
	assert.Equal(t, result.Success, res)

	infos := c.Info()
	require.Len(t, infos, 3)
	assert.Equal(t, "30", infos[1].AmountInPrimary.String())
}
