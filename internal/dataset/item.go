package dataset

import (
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/record"
)

// State is the lifecycle state of an item, stored on disk as a four
// letter code.
type State string

const (
	StateOpen      State = "OPEN"
	StateOnShow    State = "SHOW"
	StateOnSale    State = "ONSL"
	StateInAuction State = "AUCT"
	StateSold      State = "SOLD"
	StateNotSold   State = "NSOL"
	StateDelivered State = "DLVR"
	StateFinished  State = "FINI"
)

// AllStates lists every valid state code.
var AllStates = []State{
	StateOpen, StateOnShow, StateOnSale, StateInAuction,
	StateSold, StateNotSold, StateDelivered, StateFinished,
}

// AmountSensitiveStates are the states in which Amount and Buyer carry
// meaning; items in these states must not be overwritten by an import.
var AmountSensitiveStates = []State{
	StateInAuction, StateSold, StateNotSold, StateDelivered, StateFinished,
}

// ParseState validates a raw state code.
func ParseState(raw string) (State, bool) {
	s := State(raw)
	return s, slices.Contains(AllStates, s)
}

// AmountSensitive reports whether s is a state where sale data is final.
func (s State) AmountSensitive() bool {
	return slices.Contains(AmountSensitiveStates, s)
}

// StateStrings converts states to their wire codes for In filters.
func StateStrings(states []State) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

// Item table column names.
const (
	ColCode            = "Code"
	ColOwner           = "Owner"
	ColAuthor          = "Author"
	ColTitle           = "Title"
	ColMedium          = "Medium"
	ColNote            = "Note"
	ColState           = "State"
	ColCharity         = "Charity"
	ColInitialAmount   = "InitialAmount"
	ColBuyer           = "Buyer"
	ColAmount          = "Amount"
	ColAmountInAuction = "AmountInAuction"
	ColImportNumber    = "ImportNumber"
)

// itemColumns is the declared column set of the item table, in document
// order.
var itemColumns = []string{
	ColAmount, ColAmountInAuction, ColAuthor, ColBuyer, ColCharity,
	ColCode, ColImportNumber, ColInitialAmount, ColMedium, ColNote,
	ColOwner, ColState, ColTitle,
}

// Item is one consignment item. Zero Owner/Buyer and nil pointers mean
// the column is unset.
type Item struct {
	Code            string
	Owner           int
	Author          string
	Title           string
	Medium          string
	Note            string
	State           State
	Charity         *int
	InitialAmount   *decimal.Decimal
	Amount          *decimal.Decimal
	Buyer           int
	AmountInAuction *decimal.Decimal
	ImportNumber    *int
}

// reservedItemFilter matches the sentinel row that carries the next free
// item code: no owner, no author, no title.
func reservedItemFilter() record.Filter {
	return record.And{Filters: []record.Filter{
		record.IsNull{Field: ColOwner},
		record.IsNull{Field: ColAuthor},
		record.IsNull{Field: ColTitle},
	}}
}

func isReservedItem(row record.Row) bool {
	return record.Matches(reservedItemFilter(), row)
}

func itemFromRow(row record.Row) Item {
	it := Item{
		Code:   row[ColCode],
		Author: row[ColAuthor],
		Title:  row[ColTitle],
		Medium: row[ColMedium],
		Note:   row[ColNote],
		State:  State(row[ColState]),
	}
	if owner, ok := parseInt(row[ColOwner]); ok {
		it.Owner = owner
	}
	if buyer, ok := parseInt(row[ColBuyer]); ok {
		it.Buyer = buyer
	}
	if charity, ok := parseInt(row[ColCharity]); ok {
		it.Charity = &charity
	}
	if number, ok := parseInt(row[ColImportNumber]); ok {
		it.ImportNumber = &number
	}
	it.InitialAmount = parseDecimalPtr(row[ColInitialAmount])
	it.Amount = parseDecimalPtr(row[ColAmount])
	it.AmountInAuction = parseDecimalPtr(row[ColAmountInAuction])
	return it
}

func (it Item) row() record.Row {
	row := record.Row{ColCode: it.Code}
	if it.Owner != 0 {
		row[ColOwner] = strconv.Itoa(it.Owner)
	}
	if it.Buyer != 0 {
		row[ColBuyer] = strconv.Itoa(it.Buyer)
	}
	setIfPresent(row, ColAuthor, it.Author)
	setIfPresent(row, ColTitle, it.Title)
	setIfPresent(row, ColMedium, it.Medium)
	setIfPresent(row, ColNote, it.Note)
	setIfPresent(row, ColState, string(it.State))
	if it.Charity != nil {
		row[ColCharity] = strconv.Itoa(*it.Charity)
	}
	if it.ImportNumber != nil {
		row[ColImportNumber] = strconv.Itoa(*it.ImportNumber)
	}
	if it.InitialAmount != nil {
		row[ColInitialAmount] = it.InitialAmount.String()
	}
	if it.Amount != nil {
		row[ColAmount] = it.Amount.String()
	}
	if it.AmountInAuction != nil {
		row[ColAmountInAuction] = it.AmountInAuction.String()
	}
	return row
}

func setIfPresent(row record.Row, col, value string) {
	if value != "" {
		row[col] = value
	}
}
