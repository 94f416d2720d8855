package model

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/record"
	"github.com/artkeep/artkeep/internal/result"
)

// fieldValueError marks a raw field value that does not parse or falls
// outside its valid range.
type fieldValueError struct {
	field string
	raw   string
}

func (e *fieldValueError) Error() string {
	return fmt.Sprintf("invalid value %q for field %s", e.raw, e.field)
}

// evaluateState decides the initial state of a new item. An item with
// full sale info goes on sale, anything else is on show only.
func evaluateState(amount, charity string) dataset.State {
	if amount != "" && charity != "" {
		return dataset.StateOnSale
	}
	return dataset.StateOnShow
}

// AddNewItem registers a new item and records its code in the session.
// All parameters arrive as raw strings; empty means unset. When an
// import number is supplied the item code tries to follow it, falling
// back to the next free code when that number is taken.
func (m *Model) AddNewItem(sessionID int, owner, title, author, medium, amount, charity, note, importNumber string) (string, result.Result) {
	state := evaluateState(amount, charity)

	ownerNum, err := strconv.Atoi(owner)
	if err != nil {
		m.logger.Error("add new item: owner is not an integer", "owner", owner)
		return "", result.InputError
	}

	var importNum *int
	if importNumber != "" {
		n, err := strconv.Atoi(importNumber)
		if err != nil {
			m.logger.Error("add new item: import number is not an integer",
				"import_number", importNumber)
			return "", result.InputError
		}
		importNum = &n
	}

	var initialAmount *decimal.Decimal
	var charityNum *int
	if state == dataset.StateOnSale {
		d, err := decimal.NewFromString(amount)
		if err != nil || d.IsNegative() {
			m.logger.Error("add new item: amount is not a positive number", "amount", amount)
			return "", result.InputError
		}
		initialAmount = &d

		n, err := strconv.Atoi(charity)
		if err != nil || n < 0 || n > 100 {
			m.logger.Error("add new item: charity is not an integer in the range [0, 100]",
				"charity", charity)
			return "", result.InputError
		}
		charityNum = &n
	}

	if importNum != nil {
		if _, found := m.importedItem(ownerNum, *importNum); found {
			m.logger.Error("add new item: import number is already defined for the owner",
				"import_number", *importNum, "owner", ownerNum)
			return "", result.DuplicateImportNumber
		}
	}
	if _, found := m.similarItem(ownerNum, author, title); found {
		m.logger.Error("add new item: there is a similar item already",
			"owner", ownerNum, "author", author, "title", title)
		return "", result.DuplicateItem
	}

	res := result.Success
	var code string
	if importNum != nil {
		code = m.dataset.NextItemCode(*importNum, true)
		if code == "" {
			code = m.dataset.NextItemCode(0, false)
			res = result.SuccessImportRenumbered
		}
	} else {
		code = m.dataset.NextItemCode(0, false)
	}

	added := m.dataset.AddItem(dataset.Item{
		Code:          code,
		Owner:         ownerNum,
		Title:         title,
		Author:        author,
		Medium:        medium,
		Note:          note,
		State:         state,
		InitialAmount: initialAmount,
		Charity:       charityNum,
		ImportNumber:  importNum,
	})
	if !added {
		m.logger.Error("add new item: adding item failed, item not added", "code", code)
		return "", result.Error
	}

	addedCodes := m.appendAddedCode(sessionID, code)
	m.logger.Info("add new item: added item", "code", code, "added_codes", addedCodes)
	return code, res
}

func (m *Model) importedItem(owner, importNumber int) (dataset.Item, bool) {
	items := m.dataset.Items(record.And{Filters: []record.Filter{
		record.Equals{Field: dataset.ColOwner, Value: strconv.Itoa(owner)},
		record.Equals{Field: dataset.ColImportNumber, Value: strconv.Itoa(importNumber)},
	}})
	if len(items) == 0 {
		return dataset.Item{}, false
	}
	return items[0], true
}

func (m *Model) similarItem(owner int, author, title string) (dataset.Item, bool) {
	items := m.dataset.Items(record.And{Filters: []record.Filter{
		record.Equals{Field: dataset.ColOwner, Value: strconv.Itoa(owner)},
		record.Equals{Field: dataset.ColAuthor, Value: author},
		record.Equals{Field: dataset.ColTitle, Value: title},
	}})
	if len(items) == 0 {
		return dataset.Item{}, false
	}
	return items[0], true
}

// diffString updates a free-form text field. An empty raw value clears
// the field unless it is required.
func diffString(diff dataset.FieldValues, col string, cur *string, raw string, required bool) error {
	if raw != "" {
		if *cur != raw {
			*cur = raw
			diff[col] = dataset.Set(raw)
		}
		return nil
	}
	if required {
		return &fieldValueError{field: col, raw: raw}
	}
	if *cur != "" {
		*cur = ""
		diff[col] = nil
	}
	return nil
}

// diffBadge updates a badge number field stored as a plain int with
// zero meaning unset.
func diffBadge(diff dataset.FieldValues, col string, cur *int, raw string, required bool) error {
	if raw == "" {
		if required {
			return &fieldValueError{field: col, raw: raw}
		}
		if *cur != 0 {
			*cur = 0
			diff[col] = nil
		}
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return &fieldValueError{field: col, raw: raw}
	}
	if *cur != n {
		*cur = n
		diff[col] = dataset.SetInt(n)
	}
	return nil
}

func diffIntPtr(diff dataset.FieldValues, col string, cur **int, raw string, min, max int) error {
	if raw == "" {
		if *cur != nil {
			*cur = nil
			diff[col] = nil
		}
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return &fieldValueError{field: col, raw: raw}
	}
	if *cur == nil || **cur != n {
		*cur = &n
		diff[col] = dataset.SetInt(n)
	}
	return nil
}

func diffDecimalPtr(diff dataset.FieldValues, col string, cur **decimal.Decimal, raw string, min int64) error {
	if raw == "" {
		if *cur != nil {
			*cur = nil
			diff[col] = nil
		}
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.LessThan(decimal.NewFromInt(min)) {
		return &fieldValueError{field: col, raw: raw}
	}
	if *cur == nil || !(*cur).Equal(d) {
		*cur = &d
		diff[col] = dataset.SetDecimal(d)
	}
	return nil
}

func diffState(diff dataset.FieldValues, cur *dataset.State, raw string) error {
	state, ok := dataset.ParseState(raw)
	if !ok {
		return &fieldValueError{field: dataset.ColState, raw: raw}
	}
	if *cur != state {
		*cur = state
		diff[dataset.ColState] = dataset.Set(string(state))
	}
	return nil
}

// UpdateItem applies raw field values to an existing item. Only fields
// that actually change are written, and the whole update is rejected
// when the resulting item would be inconsistent.
func (m *Model) UpdateItem(code, owner, title, author, medium, state, initialAmount, charity, amount, buyer, note string) result.Result {
	item, found := m.dataset.Item(code)
	if !found {
		m.logger.Error("update item: item not found", "code", code)
		return result.ItemNotFound
	}

	diff := dataset.FieldValues{}
	err := diffBadge(diff, dataset.ColOwner, &item.Owner, owner, true)
	if err == nil {
		err = diffString(diff, dataset.ColTitle, &item.Title, title, false)
	}
	if err == nil {
		err = diffString(diff, dataset.ColAuthor, &item.Author, author, false)
	}
	if err == nil {
		err = diffString(diff, dataset.ColMedium, &item.Medium, medium, false)
	}
	if err == nil {
		err = diffState(diff, &item.State, state)
	}
	if err == nil {
		err = diffDecimalPtr(diff, dataset.ColInitialAmount, &item.InitialAmount, initialAmount, 1)
	}
	if err == nil {
		err = diffIntPtr(diff, dataset.ColCharity, &item.Charity, charity, 0, 100)
	}
	if err == nil {
		err = diffDecimalPtr(diff, dataset.ColAmount, &item.Amount, amount, 1)
	}
	if err == nil {
		err = diffBadge(diff, dataset.ColBuyer, &item.Buyer, buyer, false)
	}
	if err == nil {
		err = diffString(diff, dataset.ColNote, &item.Note, note, false)
	}
	if err != nil {
		m.logger.Error("update item: update failed due to an invalid field value",
			"code", code, "error", err)
		return result.InvalidValue
	}

	if res := m.checkDataConsistency(item); res != result.Success {
		m.logger.Info("update item: item not updated because it is not consistent",
			"code", code, "consistency", string(res))
		return res
	}

	if len(diff) == 0 {
		m.logger.Info("update item: nothing to update", "code", code)
		return result.NothingToUpdate
	}
	if !m.dataset.UpdateItem(code, diff) {
		m.logger.Error("update item: updating the item has failed", "code", code)
		return result.Error
	}
	m.logger.Info("update item: item has been updated", "code", code)
	return result.Success
}

// checkDataConsistency verifies that the sale data of an item matches
// its state.
func (m *Model) checkDataConsistency(item dataset.Item) result.Result {
	if item.State == dataset.StateOpen || item.State == dataset.StateOnShow {
		return result.Success
	}
	if item.State == dataset.StateFinished &&
		item.InitialAmount == nil && item.Charity == nil {
		// Finished item that was never offered for sale.
		return result.Success
	}

	if item.InitialAmount == nil {
		m.logger.Error("check consistency: initial amount is not defined", "code", item.Code)
		return result.InitialAmountNotDefined
	}
	if item.Charity == nil {
		m.logger.Error("check consistency: charity is not defined", "code", item.Code)
		return result.CharityNotDefined
	}
	if item.State == dataset.StateOnSale || item.State == dataset.StateNotSold {
		return result.Success
	}

	if item.Amount == nil {
		m.logger.Error("check consistency: amount is not defined", "code", item.Code)
		return result.AmountNotDefined
	}
	if item.Buyer == 0 {
		m.logger.Error("check consistency: buyer is not defined", "code", item.Code)
		return result.BuyerNotDefined
	}
	if item.Amount.LessThan(*item.InitialAmount) {
		m.logger.Error("check consistency: amount is smaller than the initial amount",
			"code", item.Code, "amount", item.Amount.String(),
			"initial_amount", item.InitialAmount.String())
		return result.AmountTooLow
	}
	return result.Success
}

// IsItemClosable reports whether a sale can still be closed on the item.
func IsItemClosable(item dataset.Item) bool {
	return item.State == dataset.StateOnSale
}

// IsItemDeliverable reports whether the item waits to be handed over.
func IsItemDeliverable(item dataset.Item) bool {
	return item.State == dataset.StateSold ||
		item.State == dataset.StateNotSold ||
		item.State == dataset.StateOnShow
}

func (m *Model) validateSaleInput(code string, item *dataset.Item, amount, buyer string) result.Result {
	if code == "" {
		m.logger.Error("validate sale input: invalid item code")
		return result.InvalidItemCode
	}
	if item == nil {
		m.logger.Error("validate sale input: item not found", "code", code)
		return result.ItemNotFound
	}
	if !IsItemClosable(*item) {
		m.logger.Error("validate sale input: item is not closable", "code", code)
		return result.ItemNotClosable
	}
	buyerNum, err := strconv.Atoi(buyer)
	if err != nil || buyerNum <= 0 {
		m.logger.Error("validate sale input: buyer not provided or invalid",
			"code", code, "buyer", buyer)
		return result.InvalidBuyer
	}
	amountDec, err := decimal.NewFromString(amount)
	if err != nil {
		m.logger.Error("validate sale input: amount not provided or invalid",
			"code", code, "amount", amount)
		return result.InvalidAmount
	}
	if item.InitialAmount != nil && amountDec.LessThan(*item.InitialAmount) {
		m.logger.Error("validate sale input: amount is too low",
			"code", code, "amount", amount)
		return result.AmountTooLow
	}
	return result.Success
}

// CloseItemAsNotSold takes an unsold item off sale.
func (m *Model) CloseItemAsNotSold(code string) result.Result {
	item, found := m.dataset.Item(code)
	if !found {
		m.logger.Error("close item as not sold: item not found", "code", code)
		return result.ItemNotFound
	}
	if !IsItemClosable(item) {
		m.logger.Error("close item as not sold: item is not closable", "code", code)
		return result.ItemNotClosable
	}
	updated := m.dataset.UpdateItem(code, dataset.FieldValues{
		dataset.ColState:  dataset.Set(string(dataset.StateNotSold)),
		dataset.ColAmount: nil,
		dataset.ColBuyer:  nil,
	})
	if !updated {
		m.logger.Error("close item as not sold: item did not update", "code", code)
		return result.Error
	}
	m.logger.Info("close item as not sold: item set as not sold", "code", code)
	return result.Success
}

// CloseItemAsSold closes the sale of an item directly to a buyer.
func (m *Model) CloseItemAsSold(code, amount, buyer string) result.Result {
	return m.closeItem(code, amount, buyer, dataset.StateSold, "close item as sold")
}

// CloseItemIntoAuction moves an item with a pending bid into the
// auction block. The bid becomes the starting amount.
func (m *Model) CloseItemIntoAuction(code, amount, buyer string) result.Result {
	return m.closeItem(code, amount, buyer, dataset.StateInAuction, "close item into auction")
}

func (m *Model) closeItem(code, amount, buyer string, state dataset.State, op string) result.Result {
	var itemRef *dataset.Item
	if item, found := m.dataset.Item(code); found {
		itemRef = &item
	}
	if res := m.validateSaleInput(code, itemRef, amount, buyer); res != result.Success {
		m.logger.Error(op+": closing item failed",
			"code", code, "amount", amount, "buyer", buyer)
		return res
	}

	amountDec, _ := decimal.NewFromString(amount)
	buyerNum, _ := strconv.Atoi(buyer)
	updated := m.dataset.UpdateItem(code, dataset.FieldValues{
		dataset.ColState:  dataset.Set(string(state)),
		dataset.ColAmount: dataset.SetDecimal(amountDec),
		dataset.ColBuyer:  dataset.SetInt(buyerNum),
	})
	if !updated {
		m.logger.Error(op+": item did not update", "code", code)
		return result.Error
	}
	m.logger.Info(op+": item closed", "code", code, "amount", amount, "buyer", buyer)
	return result.Success
}

// NetAmount splits a gross amount into the seller's net amount and the
// charity deduction, rounded in the primary currency.
func (m *Model) NetAmount(grossAmount decimal.Decimal, charityPercent int) (decimal.Decimal, decimal.Decimal) {
	charityAmount := m.currency.RoundInPrimary(
		grossAmount.Mul(decimal.NewFromInt(int64(charityPercent))).Div(decimal.NewFromInt(100)))
	return grossAmount.Sub(charityAmount), charityAmount
}

func soldState(state dataset.State) bool {
	return state == dataset.StateInAuction || state == dataset.StateSold ||
		state == dataset.StateDelivered || state == dataset.StateFinished
}

// ItemNetAmount calculates the final net and charity amounts of an
// item. Items without final sale data yield zeros.
func (m *Model) ItemNetAmount(item dataset.Item) (decimal.Decimal, decimal.Decimal) {
	if !soldState(item.State) || item.Amount == nil || item.Charity == nil {
		return decimal.Zero, decimal.Zero
	}
	return m.NetAmount(*item.Amount, *item.Charity)
}

// ItemPotentialNetAmount calculates the net and charity amounts the item
// would yield if its current sale data became final. For an item on the
// auction block the running auction amount wins over the closing bid.
func (m *Model) ItemPotentialNetAmount(item dataset.Item) (decimal.Decimal, decimal.Decimal) {
	if !soldState(item.State) {
		return decimal.Zero, decimal.Zero
	}
	amount := decimal.Zero
	if item.State == dataset.StateInAuction && item.AmountInAuction != nil {
		amount = *item.AmountInAuction
	} else if item.Amount != nil {
		amount = *item.Amount
	}
	charity := 0
	if item.Charity != nil {
		charity = *item.Charity
	}
	return m.NetAmount(amount, charity)
}

// GetPotentialCharityAmount sums the charity deduction over every item
// that might end up sold.
func (m *Model) GetPotentialCharityAmount() decimal.Decimal {
	total := decimal.Zero
	for _, view := range m.GetAllPotentiallySoldItems() {
		_, charityAmount := m.ItemPotentialNetAmount(view.Item)
		total = total.Add(charityAmount)
	}
	return total
}
