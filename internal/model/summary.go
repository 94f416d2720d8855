package model

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/record"
	"github.com/artkeep/artkeep/internal/result"
)

// BadgeSummary captures everything a badge holder settles at the desk:
// items to take home, items bought, and the money moving both ways.
type BadgeSummary struct {
	Badge int

	AvailableUnsoldItems []ItemView
	AvailableBoughtItems []ItemView
	DeliveredSoldItems   []ItemView
	PendingSoldItems     []ItemView

	GrossSaleAmount   decimal.Decimal
	CharityDeduction  decimal.Decimal
	BoughtItemsAmount decimal.Decimal
	TotalDueAmount    decimal.Decimal
}

// Empty reports whether there is nothing left to settle for the badge.
func (s *BadgeSummary) Empty() bool {
	return len(s.AvailableUnsoldItems) == 0 &&
		len(s.AvailableBoughtItems) == 0 &&
		len(s.DeliveredSoldItems) == 0 &&
		len(s.PendingSoldItems) == 0
}

func thousandths(amount decimal.Decimal) int {
	return int(amount.Mul(decimal.NewFromInt(1000)).Round(0).IntPart())
}

// Checksum is a cheap fingerprint of the summary. A reconciliation is
// finalized only when the fingerprint taken at review time still
// matches, which catches items changing under the clerk's hands.
func (s *BadgeSummary) Checksum() int {
	if s == nil {
		return 0
	}
	checksum := 0
	checksum = (checksum * 15) ^ len(s.PendingSoldItems)
	checksum = (checksum * 13) ^ len(s.AvailableUnsoldItems)
	checksum = (checksum * 11) ^ len(s.AvailableBoughtItems)
	checksum = (checksum * 7) ^ len(s.DeliveredSoldItems)
	checksum = (checksum * 5) ^ thousandths(s.GrossSaleAmount)
	checksum = (checksum * 3) ^ thousandths(s.BoughtItemsAmount)
	return checksum
}

func ownerStateFilter(badge int, states []dataset.State) record.Filter {
	return record.And{Filters: []record.Filter{
		record.Equals{Field: dataset.ColOwner, Value: strconv.Itoa(badge)},
		record.In{Field: dataset.ColState, Values: dataset.StateStrings(states)},
	}}
}

// GetBadgeReconciliationSummary collects the reconciliation state of a
// badge.
func (m *Model) GetBadgeReconciliationSummary(badge int) *BadgeSummary {
	summary := &BadgeSummary{Badge: badge}

	summary.AvailableUnsoldItems = updateSortCode(viewItems(m.dataset.Items(
		ownerStateFilter(badge, []dataset.State{dataset.StateOnShow, dataset.StateNotSold}))))

	summary.AvailableBoughtItems = updateSortCode(viewItems(m.dataset.Items(record.And{Filters: []record.Filter{
		record.Equals{Field: dataset.ColBuyer, Value: strconv.Itoa(badge)},
		record.Equals{Field: dataset.ColState, Value: string(dataset.StateSold)},
	}})))
	bought := decimal.Zero
	for _, view := range summary.AvailableBoughtItems {
		if view.Amount != nil {
			bought = bought.Add(*view.Amount)
		}
	}

	summary.DeliveredSoldItems = m.updateNetAmount(updateSortCode(viewItems(m.dataset.Items(
		ownerStateFilter(badge, []dataset.State{dataset.StateDelivered})))))
	netSale := decimal.Zero
	charity := decimal.Zero
	for _, view := range summary.DeliveredSoldItems {
		itemNet, itemCharity := m.ItemNetAmount(view.Item)
		netSale = netSale.Add(itemNet)
		charity = charity.Add(itemCharity)
	}

	summary.PendingSoldItems = m.updateNetAmount(updateSortCode(viewItems(m.dataset.Items(
		ownerStateFilter(badge, []dataset.State{dataset.StateSold})))))

	summary.GrossSaleAmount = netSale.Add(charity)
	summary.CharityDeduction = charity
	summary.BoughtItemsAmount = bought
	summary.TotalDueAmount = bought.Sub(netSale)
	return summary
}

// ReconcileBadge closes out a badge: delivered items finish, bought
// items are handed over, and unsold items go back to their owner. The
// three updates are separate writes, so a crash in between leaves a
// partially reconciled badge that a rerun completes.
func (m *Model) ReconcileBadge(badge int) bool {
	badgeStr := strconv.Itoa(badge)

	// Delivered items first.
	m.dataset.UpdateMultipleItems(
		ownerStateFilter(badge, []dataset.State{dataset.StateDelivered}),
		dataset.FieldValues{dataset.ColState: dataset.Set(string(dataset.StateFinished))})

	// Bought items second.
	m.dataset.UpdateMultipleItems(
		record.And{Filters: []record.Filter{
			record.Equals{Field: dataset.ColBuyer, Value: badgeStr},
			record.Equals{Field: dataset.ColState, Value: string(dataset.StateSold)},
		}},
		dataset.FieldValues{dataset.ColState: dataset.Set(string(dataset.StateDelivered))})

	// Unsold items third.
	m.dataset.UpdateMultipleItems(
		ownerStateFilter(badge, []dataset.State{dataset.StateOnShow, dataset.StateNotSold}),
		dataset.FieldValues{dataset.ColState: dataset.Set(string(dataset.StateFinished))})

	return true
}

// FinalizeReconciliation reconciles a badge after verifying that the
// summary the clerk reviewed still describes the data.
func (m *Model) FinalizeReconciliation(badge int, checksum int) result.Result {
	summary := m.GetBadgeReconciliationSummary(badge)
	if summary.Empty() {
		m.logger.Info("finalize reconciliation: badge has nothing to reconcile", "badge", badge)
		return result.BadgeAlreadyReconciled
	}
	if summary.Checksum() != checksum {
		m.logger.Error("finalize reconciliation: summary changed since review",
			"badge", badge, "checksum", checksum, "current", summary.Checksum())
		return result.ReconciliationDataChanged
	}
	if !m.ReconcileBadge(badge) {
		return result.Error
	}
	return result.Success
}

// ActorSummary aggregates the open business of one badge holder in the
// cash drawer overview.
type ActorSummary struct {
	Badge int

	ItemsToRetrieve int
	AmountToPay     decimal.Decimal

	ItemsToFinish   int
	AmountToReceive decimal.Decimal
}

// AddItemToReceive adds a gross amount the actor owes as a buyer.
func (a *ActorSummary) AddItemToReceive(grossAmount decimal.Decimal) {
	a.ItemsToRetrieve++
	a.AmountToPay = a.AmountToPay.Add(grossAmount)
}

// AddItemToFinish adds a net amount the actor collects as an owner.
func (a *ActorSummary) AddItemToFinish(netAmount decimal.Decimal) {
	a.ItemsToFinish++
	a.AmountToReceive = a.AmountToReceive.Add(netAmount)
}

// DrawerSummary is the cash drawer overview across all badges.
type DrawerSummary struct {
	TotalGrossCashDrawerAmount decimal.Decimal
	TotalNetCharityAmount      decimal.Decimal
	TotalNetAvailableAmount    decimal.Decimal

	BuyersToBeCleared []*ActorSummary
	OwnersToBeCleared []*ActorSummary
	PendingItems      []ItemView
}

func actorSummary(badge int, actors map[int]*ActorSummary) *ActorSummary {
	actor, ok := actors[badge]
	if !ok {
		actor = &ActorSummary{Badge: badge}
		actors[badge] = actor
	}
	return actor
}

func sortedActors(actors map[int]*ActorSummary) []*ActorSummary {
	list := make([]*ActorSummary, 0, len(actors))
	for _, actor := range actors {
		list = append(list, actor)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Badge < list[j].Badge })
	return list
}

// GetCashDrawerSummary walks every item and reports what the drawer
// should hold and who still has business at the desk.
func (m *Model) GetCashDrawerSummary() *DrawerSummary {
	drawer := decimal.Zero
	charityTotal := decimal.Zero
	buyers := map[int]*ActorSummary{}
	owners := map[int]*ActorSummary{}
	var pending []ItemView

	for _, item := range m.dataset.Items(nil) {
		switch item.State {
		case dataset.StateFinished:
			_, netCharity := m.ItemNetAmount(item)
			charityTotal = charityTotal.Add(netCharity)
			drawer = drawer.Add(netCharity)

		case dataset.StateDelivered:
			netSale, netCharity := m.ItemNetAmount(item)
			charityTotal = charityTotal.Add(netCharity)
			drawer = drawer.Add(netSale).Add(netCharity)
			actorSummary(item.Owner, owners).AddItemToFinish(netSale)

		case dataset.StateSold:
			amount := decimal.Zero
			if item.Amount != nil {
				amount = *item.Amount
			}
			actorSummary(item.Buyer, buyers).AddItemToReceive(amount)

		case dataset.StateOnShow, dataset.StateNotSold:
			actorSummary(item.Owner, owners).AddItemToFinish(decimal.Zero)

		default:
			pending = append(pending, ItemView{Item: item})
		}
	}

	return &DrawerSummary{
		TotalGrossCashDrawerAmount: drawer,
		TotalNetCharityAmount:      charityTotal,
		TotalNetAvailableAmount:    drawer.Sub(charityTotal),
		BuyersToBeCleared:          sortedActors(buyers),
		OwnersToBeCleared:          sortedActors(owners),
		PendingItems:               updateSortCode(pending),
	}
}
