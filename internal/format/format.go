// Package format renders amounts for a given display language.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/artkeep/artkeep/internal/currency"
	"github.com/shopspring/decimal"
)

// Formatter localizes numbers using the grouping and decimal separators
// of the matched language.
type Formatter struct {
	matcher  language.Matcher
	fallback language.Tag
}

// New builds a formatter over the supported language codes. Unsupported
// requests fall back to the first supported language.
func New(languages []string) *Formatter {
	tags := make([]language.Tag, 0, len(languages))
	for _, lang := range languages {
		tags = append(tags, language.Make(lang))
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	return &Formatter{
		matcher:  language.NewMatcher(tags),
		fallback: tags[0],
	}
}

func (f *Formatter) match(lang string) language.Tag {
	if lang == "" {
		return f.fallback
	}
	tag, _ := language.MatchStrings(f.matcher, lang)
	return tag
}

// FormatNumber renders an amount with the given number of decimal
// places in the requested language.
func (f *Formatter) FormatNumber(amount decimal.Decimal, decimalPlaces int, lang string) string {
	printer := message.NewPrinter(f.match(lang))
	return printer.Sprint(number.Decimal(amount.InexactFloat64(),
		number.MinFractionDigits(decimalPlaces),
		number.MaxFractionDigits(decimalPlaces)))
}

// FormatCurrency renders a converted amount with its currency prefix and
// suffix.
func (f *Formatter) FormatCurrency(converted currency.Converted, lang string) string {
	return converted.FormatPrefix +
		f.FormatNumber(converted.Amount, converted.DecimalPlaces, lang) +
		converted.FormatSuffix
}

// FormatCurrencies renders a whole conversion list.
func (f *Formatter) FormatCurrencies(converted []currency.Converted, lang string) []string {
	out := make([]string, len(converted))
	for i, c := range converted {
		out[i] = f.FormatCurrency(c, lang)
	}
	return out
}
