package model

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/artkeep/artkeep/internal/dataset"
)

// Session keys used by the model. The auction pointer lives in the
// global session so that every session sees the same auction block.
const (
	KeyCreatedTimestamp  = "CreatedTimestamp"
	KeyAddedItemCodes    = "AddedItemCodes"
	KeyImportedItems     = "ImportedItems"
	KeyImportedChecksum  = "ImportedChecksum"
	KeyItemCodeInAuction = "ItemCodeInAuction"
)

// MaxSessionID bounds the random session identifiers.
const MaxSessionID = 1<<31 - 1

// StartNewSession allocates an unused session ID, stamps it and
// persists the dataset.
func (m *Model) StartNewSession() (int, error) {
	for {
		sessionID := rand.IntN(MaxSessionID-1) + 1
		if m.FindSession(sessionID) {
			m.logger.Debug("start new session: session ID is already open, trying a different one",
				"session_id", sessionID)
			continue
		}
		m.logger.Info("start new session: created a session", "session_id", sessionID)
		stamp := time.Now().Format(time.RFC3339)
		m.dataset.UpdateSessionPairs(sessionID, map[string]*string{
			KeyCreatedTimestamp: dataset.Set(stamp),
		})
		return sessionID, m.dataset.Persist()
	}
}

// FindSession reports whether the session ID has been started.
func (m *Model) FindSession(sessionID int) bool {
	_, found := m.dataset.SessionValue(sessionID, KeyCreatedTimestamp)
	return found
}

// SetSessionValue stores a key-value pair in a session.
func (m *Model) SetSessionValue(sessionID int, key, value string) {
	m.dataset.UpdateSessionPairs(sessionID, map[string]*string{key: dataset.Set(value)})
}

// ClearSessionValue removes a key from a session.
func (m *Model) ClearSessionValue(sessionID int, key string) {
	m.dataset.UpdateSessionPairs(sessionID, map[string]*string{key: nil})
}

// ClearAdded forgets the item codes registered in a session.
func (m *Model) ClearAdded(sessionID int) {
	m.ClearSessionValue(sessionID, KeyAddedItemCodes)
}

// Added returns the codes of items registered in a session, in the
// order they were added.
func (m *Model) Added(sessionID int) []string {
	raw, found := m.dataset.SessionValue(sessionID, KeyAddedItemCodes)
	if !found {
		return nil
	}
	var codes []string
	for _, code := range strings.Split(raw, ",") {
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// AddedItems returns the items registered in a session, decorated with
// per-currency amounts. Codes of deleted items are skipped.
func (m *Model) AddedItems(sessionID int) []ItemView {
	var views []ItemView
	for _, code := range m.Added(sessionID) {
		item, found := m.dataset.Item(code)
		if !found {
			m.logger.Error("added items: skipping item because it has not been found", "code", code)
			continue
		}
		views = append(views, ItemView{Item: item})
	}
	return m.updateCurrencyAmounts(views)
}

// appendAddedCode records a freshly added item code in the session. The
// stored list keeps a trailing comma so that appends stay cheap.
func (m *Model) appendAddedCode(sessionID int, code string) string {
	added, _ := m.dataset.SessionValue(sessionID, KeyAddedItemCodes)
	added = added + code + ","
	m.dataset.UpdateSessionPairs(sessionID, map[string]*string{
		KeyAddedItemCodes: dataset.Set(added),
	})
	return added
}
