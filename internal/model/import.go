package model

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/result"
)

// componentChecksum folds a string into a small integer by xoring its
// runes.
func componentChecksum(value string) int {
	checksum := 0
	for _, r := range value {
		checksum ^= int(r)
	}
	return checksum
}

// importedItemChecksum hashes the fields of an imported item that decide
// whether it will be applied. The multiply keeps field order relevant.
func importedItemChecksum(item dataset.ImportedItem) int {
	amount := ""
	if item.InitialAmount != nil {
		amount = item.InitialAmount.String()
	}
	charity := ""
	if item.Charity != nil {
		charity = strconv.Itoa(*item.Charity)
	}

	checksum := componentChecksum(string(item.Result))
	checksum = (checksum * 3) ^ componentChecksum(item.Author)
	checksum = (checksum * 3) ^ componentChecksum(item.Title)
	checksum = (checksum * 3) ^ componentChecksum(amount)
	checksum = (checksum * 3) ^ componentChecksum(charity)
	return checksum
}

func importChecksum(items []dataset.ImportedItem) int {
	checksum := 0
	for _, item := range items {
		checksum ^= importedItemChecksum(item)
	}
	return checksum
}

// foldString canonicalizes a string for case-insensitive matching.
func foldString(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func matchImportedItems(a, b dataset.ImportedItem) bool {
	return a.Result == result.Success && b.Result == result.Success &&
		foldString(a.Author) == foldString(b.Author) &&
		foldString(a.Title) == foldString(b.Title)
}

// markDuplicates flags every item whose author and title already
// appeared earlier in the batch.
func (m *Model) markDuplicates(items []dataset.ImportedItem) {
	for i := 1; i < len(items); i++ {
		if items[i].Result != result.Success {
			continue
		}
		for j := 0; j < i; j++ {
			if matchImportedItems(items[i], items[j]) {
				m.logger.Info("import: item is a duplicate of an earlier item",
					"author", items[i].Author, "title", items[i].Title)
				items[i].Result = result.DuplicateItem
				break
			}
		}
	}
}

// checkImportedItemConsistency verifies that the sale info of an
// imported item is either complete or absent.
func (m *Model) checkImportedItemConsistency(item dataset.ImportedItem) result.Result {
	if item.Author == "" {
		m.logger.Error("import: author is undefined")
		return result.InvalidAuthor
	}
	if item.Title == "" {
		m.logger.Error("import: title is undefined")
		return result.InvalidTitle
	}
	if item.InitialAmount == nil && item.Charity == nil {
		return result.Success
	}
	if item.InitialAmount == nil || item.Charity == nil {
		m.logger.Error("import: sale info is incomplete",
			"author", item.Author, "title", item.Title)
		return result.IncompleteSaleInfo
	}
	if item.InitialAmount.IsNegative() {
		m.logger.Error("import: amount is negative",
			"author", item.Author, "title", item.Title)
		return result.InvalidAmount
	}
	if *item.Charity < 0 || *item.Charity > 100 {
		m.logger.Error("import: charity is not in the range [0, 100]",
			"author", item.Author, "title", item.Title)
		return result.InvalidCharity
	}
	return result.Success
}

func (m *Model) processItemImport(raw map[string]string) dataset.ImportedItem {
	res, item := m.dataset.NormalizeItemImport(raw)
	if res == result.Success {
		res = m.checkImportedItemConsistency(item)
	}
	if res != result.Success {
		m.logger.Error("import: reading a raw item failed", "result", string(res))
	}
	item.Result = res
	return item
}

// postProcessImport replaces any pending import of the session with the
// new batch and returns the batch checksum.
func (m *Model) postProcessImport(sessionID int, items []dataset.ImportedItem) (int, error) {
	m.DropImport(sessionID)

	checksum := importChecksum(items)
	m.markDuplicates(items)

	encoded, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("encode import batch: %w", err)
	}
	m.dataset.UpdateSessionPairs(sessionID, map[string]*string{
		KeyImportedItems:    dataset.Set(string(encoded)),
		KeyImportedChecksum: dataset.Set(strconv.Itoa(checksum)),
	})
	return checksum, nil
}

// IsOwnerDefinedInImport reports whether every item of a batch carries
// its own owner.
func IsOwnerDefinedInImport(items []dataset.ImportedItem) bool {
	for _, item := range items {
		if item.Owner == nil {
			return false
		}
	}
	return true
}

// csvImportColumns maps CSV columns to import fields, in file order.
var csvImportColumns = []string{
	dataset.ImpNumber, dataset.ImpOwner, dataset.ImpAuthor, dataset.ImpTitle,
	dataset.ImpMedium, dataset.ImpNote, dataset.ImpInitialAmount, dataset.ImpCharity,
}

// ImportCSV reads an item list from CSV and stages it as the pending
// import of the session. Rows that fail to parse stay in the batch with
// their failure recorded.
func (m *Model) ImportCSV(sessionID int, r io.Reader, headerRow bool) ([]dataset.ImportedItem, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var items []dataset.ImportedItem
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		if !headerRow || line > 0 {
			raw := map[string]string{}
			for i, field := range csvImportColumns {
				if i < len(row) {
					raw[field] = row[i]
				}
			}
			items = append(items, m.processItemImport(raw))
		}
		line++
	}

	checksum, err := m.postProcessImport(sessionID, items)
	if err != nil {
		return nil, 0, err
	}
	m.logger.Info("import csv: staged items", "count", len(items), "checksum", checksum)
	return items, checksum, nil
}

// textImportTags maps line tags to import fields. The number tag opens a
// new item.
var textImportTags = []struct {
	tag   string
	field string
}{
	{"A)", dataset.ImpNumber},
	{"B)", dataset.ImpAuthor},
	{"C)", dataset.ImpTitle},
	{"D)", dataset.ImpInitialAmount},
	{"E)", dataset.ImpCharity},
}

// extractTaggedValue pulls a tag and its value out of a line of the
// tagged text format. Leading decoration before the tag is ignored.
func extractTaggedValue(line string) (string, string, bool) {
	start := 0
	for start < len(line) {
		c := line[start]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			break
		}
		start++
	}
	line = line[start:]
	if line == "" {
		return "", "", false
	}

	for _, entry := range textImportTags {
		if strings.HasPrefix(line, entry.tag) {
			colon := strings.IndexByte(line, ':')
			if colon < 0 {
				return entry.field, "", true
			}
			return entry.field, strings.Trim(line[colon+1:], " \t\r\n"), true
		}
	}
	return "", "", false
}

// ImportText reads an item list from the tagged text format and stages
// it as the pending import of the session.
func (m *Model) ImportText(sessionID int, text string) ([]dataset.ImportedItem, int, error) {
	var items []dataset.ImportedItem
	raw := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		field, value, ok := extractTaggedValue(line)
		if !ok {
			continue
		}
		if field == dataset.ImpNumber && len(raw) != 0 {
			items = append(items, m.processItemImport(raw))
			raw = map[string]string{}
		}
		raw[field] = value
	}
	if len(raw) != 0 {
		items = append(items, m.processItemImport(raw))
	}

	checksum, err := m.postProcessImport(sessionID, items)
	if err != nil {
		return nil, 0, err
	}
	m.logger.Info("import text: staged items", "count", len(items), "checksum", checksum)
	return items, checksum, nil
}

// DropImport discards the pending import of a session.
func (m *Model) DropImport(sessionID int) {
	m.dataset.UpdateSessionPairs(sessionID, map[string]*string{
		KeyImportedItems:    nil,
		KeyImportedChecksum: nil,
	})
}

// ApplyImport turns the pending import of a session into registered
// items. The checksum must match the staged batch. Items whose import
// number is already registered update the existing item in place unless
// its sale is already final. Returns the skipped items and the items
// that had to be renumbered, the latter with Number replaced by the
// code they were registered under. The batch is dropped either way.
func (m *Model) ApplyImport(sessionID int, checksum, defaultOwner string) (result.Result, []dataset.ImportedItem, []dataset.ImportedItem) {
	storedChecksum, haveChecksum := m.dataset.SessionValue(sessionID, KeyImportedChecksum)
	encoded, haveItems := m.dataset.SessionValue(sessionID, KeyImportedItems)
	if !haveChecksum || !haveItems {
		m.logger.Debug("apply import: there is no import to apply")
		return result.NoImport, nil, nil
	}

	checksumNum, err := strconv.Atoi(checksum)
	if err != nil || storedChecksum != strconv.Itoa(checksumNum) {
		m.logger.Debug("apply import: checksum does not match the staged batch",
			"checksum", checksum, "stored", storedChecksum)
		return result.InvalidChecksum, nil, nil
	}

	if defaultOwner != "" {
		if _, err := strconv.Atoi(defaultOwner); err != nil {
			m.logger.Error("apply import: default owner is not an integer",
				"default_owner", defaultOwner)
			return result.InputError, nil, nil
		}
	}

	var items []dataset.ImportedItem
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		m.logger.Error("apply import: staged batch is corrupted", "error", err)
		return result.InputError, nil, nil
	}

	var skipped, renumbered []dataset.ImportedItem
	for i := range items {
		item := &items[i]
		if item.Result == result.Success {
			code, res := m.applyImportedItem(sessionID, *item, defaultOwner)
			item.Result = res
			if res == result.SuccessImportRenumbered {
				entry := *item
				if number, err := strconv.Atoi(code); err == nil {
					entry.Number = &number
				}
				renumbered = append(renumbered, entry)
			}
		}
		if !item.Result.OK() {
			m.logger.Warn("apply import: item has been skipped",
				"author", item.Author, "title", item.Title, "result", string(item.Result))
			skipped = append(skipped, *item)
		}
	}

	m.logger.Info("apply import: batch applied",
		"added", len(m.Added(sessionID)), "skipped", len(skipped), "renumbered", len(renumbered))

	m.DropImport(sessionID)
	return result.Success, skipped, renumbered
}

// applyImportedItem registers a single staged item and reports the code
// it ended up under when the requested import number was taken.
func (m *Model) applyImportedItem(sessionID int, item dataset.ImportedItem, defaultOwner string) (string, result.Result) {
	owner := defaultOwner
	if item.Owner != nil {
		owner = strconv.Itoa(*item.Owner)
	}
	amount := ""
	if item.InitialAmount != nil {
		amount = item.InitialAmount.String()
	}
	charity := ""
	if item.Charity != nil {
		charity = strconv.Itoa(*item.Charity)
	}
	number := ""
	if item.Number != nil {
		number = strconv.Itoa(*item.Number)
	}

	code, res := m.AddNewItem(sessionID, owner, item.Title, item.Author, item.Medium,
		amount, charity, item.Note, number)
	if res == result.SuccessImportRenumbered {
		return code, res
	}
	if res == result.DuplicateImportNumber {
		ownerNum, _ := strconv.Atoi(owner)
		res = m.updateImportedItem(sessionID, ownerNum, *item.Number,
			item.Title, item.Author, item.Medium, amount, charity, item.Note)
	}
	if !res.OK() {
		m.logger.Error("apply import: importing item failed",
			"author", item.Author, "title", item.Title, "result", string(res))
	}
	return code, res
}

// updateImportedItem refreshes an existing item matched by its owner and
// import number. Items with final sale data are left alone.
func (m *Model) updateImportedItem(sessionID, owner, importNumber int, title, author, medium, amount, charity, note string) result.Result {
	item, found := m.importedItem(owner, importNumber)
	if !found {
		m.logger.Error("update imported item: import number not found",
			"import_number", importNumber, "owner", owner)
		return result.ItemNotFound
	}
	if item.State.AmountSensitive() {
		m.logger.Error("update imported item: item is already closed",
			"import_number", importNumber, "owner", owner)
		return result.ItemClosedAlready
	}

	saleAmount := ""
	if item.Amount != nil {
		saleAmount = item.Amount.String()
	}
	buyer := ""
	if item.Buyer != 0 {
		buyer = strconv.Itoa(item.Buyer)
	}

	res := m.UpdateItem(item.Code, strconv.Itoa(item.Owner), title, author, medium,
		string(evaluateState(amount, charity)), amount, charity, saleAmount, buyer, note)
	if res == result.Success {
		addedCodes := m.appendAddedCode(sessionID, item.Code)
		m.logger.Info("update imported item: updated item",
			"code", item.Code, "added_codes", addedCodes)
	}
	return res
}
