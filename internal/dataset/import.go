package dataset

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/result"
)

// Imported item field names as they appear in raw import rows and in the
// serialized import batch.
const (
	ImpNumber        = "Number"
	ImpOwner         = "Owner"
	ImpAuthor        = "Author"
	ImpTitle         = "Title"
	ImpMedium        = "Medium"
	ImpNote          = "Note"
	ImpInitialAmount = "InitialAmount"
	ImpCharity       = "Charity"
)

// ImportedItem is a single normalized row of an import batch. Number and
// Owner are nil when the source row left them blank; a nil InitialAmount
// marks an item that is not for sale.
type ImportedItem struct {
	Number        *int             `json:"Number"`
	Owner         *int             `json:"Owner"`
	Author        string           `json:"Author"`
	Title         string           `json:"Title"`
	Medium        string           `json:"Medium"`
	Note          string           `json:"Note"`
	InitialAmount *decimal.Decimal `json:"InitialAmount"`
	Charity       *int             `json:"Charity"`
	Result        result.Result    `json:"ImportResult"`
}

// NormalizeItemImport converts a raw import row into a typed item.
// Blank components come back unset; a non-blank component that does not
// parse fails with the result naming the offending field.
func (d *Dataset) NormalizeItemImport(raw map[string]string) (result.Result, ImportedItem) {
	var item ImportedItem

	number := strings.TrimSpace(raw[ImpNumber])
	if number != "" {
		n, ok := parseInt(number)
		if !ok {
			d.logger.Error("normalize item import: number is not an integer", "number", number)
			return result.InvalidItemNumber, item
		}
		item.Number = &n
	}

	owner := strings.TrimSpace(raw[ImpOwner])
	if owner != "" {
		n, ok := parseInt(owner)
		if !ok {
			d.logger.Error("normalize item import: owner is not an integer", "owner", owner)
			return result.InvalidItemOwner, item
		}
		item.Owner = &n
	}

	item.Author = strings.TrimSpace(raw[ImpAuthor])
	if item.Author == "" {
		d.logger.Error("normalize item import: no author in the input")
		return result.InvalidAuthor, item
	}

	item.Title = strings.TrimSpace(raw[ImpTitle])
	if item.Title == "" {
		d.logger.Error("normalize item import: no title in the input")
		return result.InvalidTitle, item
	}

	item.Medium = strings.TrimSpace(raw[ImpMedium])
	item.Note = strings.TrimSpace(raw[ImpNote])

	amount := strings.TrimSpace(raw[ImpInitialAmount])
	if amount != "" {
		dec, ok := parseDecimal(amount)
		if !ok {
			d.logger.Error("normalize item import: amount is not a decimal number", "amount", amount)
			return result.InvalidAmount, item
		}
		item.InitialAmount = &dec
	}

	charity := strings.TrimSpace(raw[ImpCharity])
	if charity != "" {
		n, ok := parseInt(charity)
		if !ok {
			d.logger.Error("normalize item import: charity is not an integer", "charity", charity)
			return result.InvalidCharity, item
		}
		item.Charity = &n
	}

	return result.Success, item
}
