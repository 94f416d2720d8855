package model

import (
	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/dataset"
)

// auctionPointer reads the code of the item currently on the auction
// block from the global session.
func (m *Model) auctionPointer() string {
	code, _ := m.dataset.GlobalValue(KeyItemCodeInAuction)
	return code
}

func (m *Model) setAuctionPointer(code string) {
	var value *string
	if code != "" {
		value = dataset.Set(code)
	}
	m.dataset.UpdateGlobalPairs(map[string]*string{KeyItemCodeInAuction: value})
}

// GetItemInAuction returns the item on the auction block, or nil when
// there is none or the pointed item left the auction state.
func (m *Model) GetItemInAuction() *ItemView {
	code := m.auctionPointer()
	if code == "" {
		return nil
	}
	item, found := m.dataset.Item(code)
	if !found {
		return nil
	}
	if item.State != dataset.StateInAuction {
		m.logger.Error("get item in auction: item is not in auction", "code", item.Code)
		return nil
	}
	views := m.updateCurrencyAmounts([]ItemView{{Item: item}})
	return &views[0]
}

// SendItemToAuction puts an item on the auction block. The closing bid
// becomes the running auction amount. Returns nil when the item cannot
// go on the block; the block is cleared in that case.
func (m *Model) SendItemToAuction(code string) *ItemView {
	item, found := m.dataset.Item(code)
	switch {
	case !found:
		m.logger.Error("send item to auction: item has not been found", "code", code)
	case item.State != dataset.StateInAuction:
		m.logger.Error("send item to auction: item has an incompatible state",
			"code", code, "state", string(item.State))
	default:
		values := dataset.FieldValues{dataset.ColAmountInAuction: nil}
		if item.Amount != nil {
			values[dataset.ColAmountInAuction] = dataset.SetDecimal(*item.Amount)
		}
		if !m.dataset.UpdateItem(code, values) {
			m.logger.Error("send item to auction: item has not been updated", "code", code)
			break
		}
		item.AmountInAuction = item.Amount
		m.setAuctionPointer(code)
		return &ItemView{Item: item}
	}

	m.setAuctionPointer("")
	return nil
}

// UpdateItemInAuction records a new highest bid for the item on the
// block.
func (m *Model) UpdateItemInAuction(amount decimal.Decimal) bool {
	view := m.GetItemInAuction()
	if view == nil {
		m.logger.Error("update item in auction: no valid item in auction")
		return false
	}
	updated := m.dataset.UpdateItem(view.Code, dataset.FieldValues{
		dataset.ColAmountInAuction: dataset.SetDecimal(amount),
	})
	if !updated {
		m.logger.Error("update item in auction: item has not been updated", "code", view.Code)
	}
	return updated
}

// SellItemInAuction closes the auction of the item on the block to the
// given buyer at the running auction amount.
func (m *Model) SellItemInAuction(buyer int) bool {
	if buyer < 1 {
		m.logger.Error("sell item in auction: invalid buyer", "buyer", buyer)
		return false
	}
	view := m.GetItemInAuction()
	if view == nil {
		m.logger.Error("sell item in auction: no valid item in auction")
		return false
	}

	values := dataset.FieldValues{
		dataset.ColState:           dataset.Set(string(dataset.StateSold)),
		dataset.ColBuyer:           dataset.SetInt(buyer),
		dataset.ColAmount:          nil,
		dataset.ColAmountInAuction: nil,
	}
	if view.AmountInAuction != nil {
		values[dataset.ColAmount] = dataset.SetDecimal(*view.AmountInAuction)
	}
	if !m.dataset.UpdateItem(view.Code, values) {
		m.logger.Error("sell item in auction: item has not been updated", "code", view.Code)
		return false
	}
	m.logger.Info("sell item in auction: item has been sold",
		"code", view.Code, "buyer", buyer)
	m.setAuctionPointer("")
	return true
}

// SellItemInAuctionNoChange closes the auction keeping the original
// buyer and amount of the pre-auction bid.
func (m *Model) SellItemInAuctionNoChange() bool {
	view := m.GetItemInAuction()
	if view == nil {
		m.logger.Error("sell item in auction unchanged: no valid item in auction")
		return false
	}
	updated := m.dataset.UpdateItem(view.Code, dataset.FieldValues{
		dataset.ColState:           dataset.Set(string(dataset.StateSold)),
		dataset.ColAmountInAuction: nil,
	})
	if !updated {
		m.logger.Error("sell item in auction unchanged: item has not been updated",
			"code", view.Code)
		return false
	}
	m.logger.Info("sell item in auction unchanged: item has been sold",
		"code", view.Code, "buyer", view.Buyer)
	m.setAuctionPointer("")
	return true
}

// ClearAuction takes the current item off the block without selling it.
func (m *Model) ClearAuction() {
	if view := m.GetItemInAuction(); view != nil {
		m.dataset.UpdateItem(view.Code, dataset.FieldValues{
			dataset.ColAmountInAuction: nil,
		})
		m.logger.Debug("clear auction: item has been removed from auction", "code", view.Code)
	}
	m.setAuctionPointer("")
}
