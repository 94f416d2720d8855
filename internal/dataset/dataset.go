// Package dataset is the typed repository over the record store: three
// fixed tables (items, session pairs, currency rates), the item code
// allocator, and string⇄typed normalization of every persisted column.
package dataset

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	"github.com/artkeep/artkeep/internal/record"
)

// GlobalSessionID is the reserved session holding process-wide singleton
// state such as the item currently in auction.
const GlobalSessionID = 0

// Default table file names inside the data folder.
const (
	DefaultSessionFile  = "sessiondictionary.xml"
	DefaultItemsFile    = "artshowitems.xml"
	DefaultCurrencyFile = "currency.xml"
)

// Session table column names.
const (
	colSessionID = "SessionID"
	colKey       = "Key"
	colValue     = "Value"
)

var sessionColumns = []string{colKey, colSessionID, colValue}

// Dataset owns the three persisted tables. It is the only mutator of
// their rows; the domain engine goes through its typed accessors, which
// keep the record store's dirty flags accurate.
type Dataset struct {
	logger   *slog.Logger
	sessions *record.Table
	items    *record.Table
	currency *record.Table
}

// New creates a dataset using the default file names inside dir.
func New(logger *slog.Logger, dir string) *Dataset {
	return NewWithFiles(logger,
		filepath.Join(dir, DefaultSessionFile),
		filepath.Join(dir, DefaultItemsFile),
		filepath.Join(dir, DefaultCurrencyFile))
}

// NewWithFiles creates a dataset with explicit table file paths.
func NewWithFiles(logger *slog.Logger, sessionPath, itemsPath, currencyPath string) *Dataset {
	return &Dataset{
		logger:   logger,
		sessions: record.New(logger, sessionPath, "SessionDictionary", "KeyValuePair", sessionColumns),
		items:    record.New(logger, itemsPath, "ArtShowItems", "Item", itemColumns),
		currency: record.New(logger, currencyPath, "CurrencyList", "Currency", currencyColumns),
	}
}

// Restore loads all three tables from disk.
func (d *Dataset) Restore() error {
	return errors.Join(d.sessions.Load(), d.items.Load(), d.currency.Load())
}

// Persist flushes all three tables. Unchanged tables are skipped.
func (d *Dataset) Persist() error {
	return errors.Join(d.sessions.Save(false), d.items.Save(false), d.currency.Save(false))
}

func sessionFilter(sessionID int, key string) record.Filter {
	return record.And{Filters: []record.Filter{
		record.Equals{Field: colSessionID, Value: strconv.Itoa(sessionID)},
		record.Equals{Field: colKey, Value: key},
	}}
}

// SessionPairs returns every key/value pair of a session.
func (d *Dataset) SessionPairs(sessionID int) map[string]string {
	rows := d.sessions.Select([]string{colKey, colValue},
		record.Equals{Field: colSessionID, Value: strconv.Itoa(sessionID)})
	pairs := make(map[string]string, len(rows))
	for _, row := range rows {
		pairs[row[colKey]] = row[colValue]
	}
	return pairs
}

// SessionValue returns the value of key in a session, if set.
func (d *Dataset) SessionValue(sessionID int, key string) (string, bool) {
	rows := d.sessions.Select([]string{colValue}, sessionFilter(sessionID, key))
	if len(rows) == 0 {
		return "", false
	}
	return rows[0][colValue], true
}

// UpdateSessionPairs writes the given pairs into a session. A nil value
// deletes the pair; pairs are created on first write.
func (d *Dataset) UpdateSessionPairs(sessionID int, pairs map[string]*string) {
	for key, value := range pairs {
		if value == nil {
			d.sessions.Delete(sessionFilter(sessionID, key))
			continue
		}
		values := map[string]*string{colValue: value}
		if d.sessions.Update(values, sessionFilter(sessionID, key)) == 0 {
			d.sessions.Insert(record.Row{
				colSessionID: strconv.Itoa(sessionID),
				colKey:       key,
				colValue:     *value,
			}, "")
		}
	}
}

// GlobalValue reads a key from the reserved global session.
func (d *Dataset) GlobalValue(key string) (string, bool) {
	return d.SessionValue(GlobalSessionID, key)
}

// UpdateGlobalPairs writes pairs into the reserved global session.
func (d *Dataset) UpdateGlobalPairs(pairs map[string]*string) {
	d.UpdateSessionPairs(GlobalSessionID, pairs)
}

// Items returns the typed items matching f, excluding the reserved
// sentinel row.
func (d *Dataset) Items(f record.Filter) []Item {
	rows := d.items.Select(itemColumns, f)
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		if isReservedItem(row) {
			continue
		}
		items = append(items, itemFromRow(row))
	}
	return items
}

// Item returns the item with the given code.
func (d *Dataset) Item(code string) (Item, bool) {
	if code == "" {
		return Item{}, false
	}
	items := d.Items(record.Equals{Field: ColCode, Value: code})
	switch len(items) {
	case 0:
		d.logger.Error("item not found", "code", code)
		return Item{}, false
	case 1:
		return items[0], true
	default:
		d.logger.Error("item has duplicates", "code", code, "count", len(items))
		return Item{}, false
	}
}

// CountItems counts items matching f, including the sentinel row.
func (d *Dataset) CountItems(f record.Filter) int {
	return d.items.Count(f)
}

// NextItemCode allocates the next item code.
//
// The "next free" pointer is stored as a real row (the reserved sentinel)
// so it persists transactionally with the table it numbers. The sentinel
// is recovered (or re-estimated from the highest numeric code), a new
// sentinel is inserted one past the handed-out value, and the recovered
// value is returned.
//
// A suggested code ≥ the reserved value replaces it, letting an import
// keep a natural numbering scheme. With strict set, a suggestion below
// the reserved value returns "" without allocating; the sentinel is put
// back untouched.
func (d *Dataset) NextItemCode(suggested int, strict bool) string {
	reserved, found := d.recoverReservedCode()
	if !found {
		reserved = d.estimateReservedCode()
	}

	if suggested > 0 {
		if suggested >= reserved {
			reserved = suggested
		} else if strict {
			if !d.items.Insert(record.Row{ColCode: strconv.Itoa(reserved)}, ColCode) {
				d.logger.Warn("failed to restore reserved code", "code", reserved)
			}
			d.logger.Info("suggested code below reserved code, not allocating",
				"suggested", suggested, "reserved", reserved)
			return ""
		}
	}

	next := reserved + 1
	for !d.items.Insert(record.Row{ColCode: strconv.Itoa(next)}, ColCode) {
		next += rand.IntN(10) + 1
	}
	return strconv.Itoa(reserved)
}

// recoverReservedCode finds and removes the sentinel row. More than one
// sentinel is an inconsistency: all are removed and the code is
// re-estimated.
func (d *Dataset) recoverReservedCode() (int, bool) {
	rows := d.items.Select([]string{ColCode}, reservedItemFilter())
	switch {
	case len(rows) == 1:
		d.items.Delete(reservedItemFilter())
		if code, ok := parseInt(rows[0][ColCode]); ok {
			return code, true
		}
		return 0, false
	case len(rows) > 1:
		d.logger.Warn("multiple reserved items found, removing all", "count", len(rows))
		d.items.Delete(reservedItemFilter())
	}
	return 0, false
}

func (d *Dataset) estimateReservedCode() int {
	highest := 0
	for _, row := range d.items.Select([]string{ColCode}, nil) {
		if code, ok := parseInt(row[ColCode]); ok && code > highest {
			highest = code
		}
	}
	reserved := highest + 1
	d.logger.Info("reserved code estimated", "code", reserved)
	return reserved
}

// AddItem inserts a new item row. The insert is rejected on an empty
// code, a missing owner, or a code collision.
func (d *Dataset) AddItem(it Item) bool {
	if it.Code == "" {
		d.logger.Error("add item: code is empty")
		return false
	}
	if it.Owner <= 0 {
		d.logger.Error("add item: owner is invalid", "owner", it.Owner)
		return false
	}
	return d.items.Insert(it.row(), ColCode)
}

// UpdateItem applies field values to the item with the given code. The
// code itself cannot be changed through an update.
func (d *Dataset) UpdateItem(code string, values FieldValues) bool {
	if code == "" {
		d.logger.Error("update item: code is empty")
		return false
	}
	if v, ok := values[ColCode]; ok && (v == nil || *v != code) {
		d.logger.Error("update item: code mismatch", "code", code)
		return false
	}
	updated := d.items.Update(values, record.Equals{Field: ColCode, Value: code})
	if updated != 1 {
		d.logger.Error("update item: item not updated", "code", code, "updated", updated)
		return false
	}
	d.logger.Info("item updated", "code", code)
	return true
}

// UpdateMultipleItems applies field values to every item matching f and
// returns the number updated. A nil filter is rejected: bulk updates must
// always be scoped.
func (d *Dataset) UpdateMultipleItems(f record.Filter, values FieldValues) int {
	if f == nil {
		d.logger.Error("update multiple items: filter is required")
		return 0
	}
	if len(values) == 0 {
		return 0
	}
	return d.items.Update(values, f)
}

// DeleteItems removes the items with the given codes.
func (d *Dataset) DeleteItems(codes []string) int {
	return d.items.Delete(record.In{Field: ColCode, Values: codes})
}
