package model

import (
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/currency"
	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/record"
)

// Model ties the dataset and the currency converter together. It assumes
// a single writer; concurrent mutation is not supported.
type Model struct {
	logger   *slog.Logger
	dataset  *dataset.Dataset
	currency *currency.Currency
}

func New(logger *slog.Logger, ds *dataset.Dataset, cur *currency.Currency) *Model {
	return &Model{logger: logger, dataset: ds, currency: cur}
}

// Persist flushes all changed tables to disk.
func (m *Model) Persist() error {
	return m.dataset.Persist()
}

// Currency exposes the active converter.
func (m *Model) Currency() *currency.Currency {
	return m.currency
}

// ItemView is an item decorated for presentation. Which decorations are
// populated depends on the query that produced the view.
type ItemView struct {
	dataset.Item

	SortCode         int
	PrintAllowed     bool
	DeleteAllowed    bool
	NetAmount        *decimal.Decimal
	NetCharityAmount *decimal.Decimal

	InitialAmountInCurrency   []currency.Converted
	AmountInCurrency          []currency.Converted
	AmountInAuctionInCurrency []currency.Converted
}

func viewItems(items []dataset.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, ItemView{Item: it})
	}
	return views
}

// itemSortCode maps an item code to an integer so that views can be
// ordered numerically. A leading letter keeps letter-prefixed codes in
// their own range.
func itemSortCode(code string) int {
	if code == "" {
		return 0
	}
	first := code[0]
	if (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') {
		n, err := strconv.Atoi(code[1:])
		if err != nil {
			return 0
		}
		return int(first)*10000 + n
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0
	}
	return n
}

func updateSortCode(views []ItemView) []ItemView {
	for i := range views {
		views[i].SortCode = itemSortCode(views[i].Code)
	}
	return views
}

func updatePermissions(views []ItemView) []ItemView {
	for i := range views {
		state := views[i].State
		allowed := state == dataset.StateOpen ||
			state == dataset.StateOnShow ||
			state == dataset.StateOnSale
		views[i].PrintAllowed = allowed
		views[i].DeleteAllowed = allowed
	}
	return views
}

func (m *Model) updateNetAmount(views []ItemView) []ItemView {
	for i := range views {
		if views[i].Amount == nil {
			continue
		}
		net, charity := m.ItemNetAmount(views[i].Item)
		views[i].NetAmount = &net
		views[i].NetCharityAmount = &charity
	}
	return views
}

func (m *Model) updateCurrencyAmounts(views []ItemView) []ItemView {
	for i := range views {
		if views[i].InitialAmount != nil {
			views[i].InitialAmountInCurrency = m.currency.ConvertToAll(*views[i].InitialAmount)
		}
		if views[i].Amount != nil {
			views[i].AmountInCurrency = m.currency.ConvertToAll(*views[i].Amount)
		}
		if views[i].AmountInAuction != nil {
			views[i].AmountInAuctionInCurrency = m.currency.ConvertToAll(*views[i].AmountInAuction)
		}
	}
	return views
}

// GetAllItems returns every registered item with sort codes and print
// and delete permissions.
func (m *Model) GetAllItems() []ItemView {
	return updatePermissions(updateSortCode(viewItems(m.dataset.Items(nil))))
}

// GetAllClosableItems returns the items that are still offered for sale.
func (m *Model) GetAllClosableItems() []ItemView {
	return updateSortCode(viewItems(m.dataset.Items(
		record.Equals{Field: dataset.ColState, Value: string(dataset.StateOnSale)})))
}

// GetAllDeliverableItems returns the items waiting to be handed over at
// the desk, whether sold, unsold or only exhibited.
func (m *Model) GetAllDeliverableItems() []ItemView {
	items := m.dataset.Items(nil)
	deliverable := items[:0]
	for _, item := range items {
		if IsItemDeliverable(item) {
			deliverable = append(deliverable, item)
		}
	}
	return updateSortCode(viewItems(deliverable))
}

// GetAllItemsInAuction returns the items queued for the auction block.
func (m *Model) GetAllItemsInAuction() []ItemView {
	return updateSortCode(viewItems(m.dataset.Items(
		record.Equals{Field: dataset.ColState, Value: string(dataset.StateInAuction)})))
}

// GetAllPotentiallySoldItems returns items that carry or carried a sale
// amount. Items with a zero amount are dropped.
func (m *Model) GetAllPotentiallySoldItems() []ItemView {
	views := updateSortCode(viewItems(m.dataset.Items(record.In{
		Field: dataset.ColState,
		Values: dataset.StateStrings([]dataset.State{
			dataset.StateInAuction, dataset.StateSold,
			dataset.StateDelivered, dataset.StateFinished,
		}),
	})))

	sold := views[:0]
	for _, view := range views {
		if view.Amount != nil && view.Amount.IsPositive() {
			sold = append(sold, view)
		}
	}
	m.logger.Info("retrieved potentially sold items", "count", len(sold))
	return sold
}

// GetItems returns the given items decorated with sort codes and
// per-currency amounts. Unknown codes are silently absent.
func (m *Model) GetItems(codes []string) []ItemView {
	if len(codes) == 0 {
		return nil
	}
	return m.updateCurrencyAmounts(updateSortCode(viewItems(m.dataset.Items(
		record.In{Field: dataset.ColCode, Values: codes}))))
}

// GetItem returns a single decorated item, or nil if the code is
// unknown.
func (m *Model) GetItem(code string) *ItemView {
	if code == "" {
		m.logger.Error("get item: item code not specified")
		return nil
	}
	views := m.GetItems([]string{code})
	if len(views) == 0 {
		m.logger.Info("get item: item not found", "code", code)
		return nil
	}
	return &views[0]
}

// DeleteItems removes the given items and reports how many existed.
func (m *Model) DeleteItems(codes []string) int {
	return m.dataset.DeleteItems(codes)
}
