package model

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artkeep/artkeep/internal/dataset"
	"github.com/artkeep/artkeep/internal/result"
)

func TestComponentChecksum(t *testing.T) {
	assert.Equal(t, 0, componentChecksum(""))
	assert.Equal(t, 65, componentChecksum("A"))
	assert.Equal(t, 65^66, componentChecksum("AB"))
}

func TestImportedItemChecksumSensitivity(t *testing.T) {
	base := dataset.ImportedItem{
		Author: "Painter", Title: "Still Life",
		InitialAmount: decPtr("250"), Charity: intPtr(50),
		Result: result.Success,
	}

	assert.Equal(t, importedItemChecksum(base), importedItemChecksum(base))

	changed := base
	changed.Title = "Still Life II"
	assert.NotEqual(t, importedItemChecksum(base), importedItemChecksum(changed))

	changed = base
	changed.InitialAmount = decPtr("300")
	assert.NotEqual(t, importedItemChecksum(base), importedItemChecksum(changed))

	// Swapping author and title must not cancel out.
	swapped := base
	swapped.Author, swapped.Title = base.Title, base.Author
	assert.NotEqual(t, importedItemChecksum(base), importedItemChecksum(swapped))
}

func TestFoldString(t *testing.T) {
	assert.Equal(t, foldString("Still Life"), foldString("STILL life"))
	assert.NotEqual(t, foldString("Still Life"), foldString("Still Life II"))
}

func TestMarkDuplicates(t *testing.T) {
	m := newTestModel(t)
	items := []dataset.ImportedItem{
		{Author: "Painter", Title: "Still Life", Result: result.Success},
		{Author: "Sculptor", Title: "Bust", Result: result.Success},
		{Author: "PAINTER", Title: "still life", Result: result.Success},
		{Author: "Painter", Title: "Still Life", Result: result.InvalidAmount},
	}
	m.markDuplicates(items)

	assert.Equal(t, result.Success, items[0].Result)
	assert.Equal(t, result.Success, items[1].Result)
	assert.Equal(t, result.DuplicateItem, items[2].Result)
	assert.Equal(t, result.InvalidAmount, items[3].Result)
}

func TestCheckImportedItemConsistency(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		name string
		item dataset.ImportedItem
		want result.Result
	}{
		{"no sale info", dataset.ImportedItem{Author: "A", Title: "T"}, result.Success},
		{"complete sale info", dataset.ImportedItem{Author: "A", Title: "T",
			InitialAmount: decPtr("250"), Charity: intPtr(50)}, result.Success},
		{"no author", dataset.ImportedItem{Title: "T"}, result.InvalidAuthor},
		{"no title", dataset.ImportedItem{Author: "A"}, result.InvalidTitle},
		{"amount only", dataset.ImportedItem{Author: "A", Title: "T",
			InitialAmount: decPtr("250")}, result.IncompleteSaleInfo},
		{"charity only", dataset.ImportedItem{Author: "A", Title: "T",
			Charity: intPtr(50)}, result.IncompleteSaleInfo},
		{"negative amount", dataset.ImportedItem{Author: "A", Title: "T",
			InitialAmount: decPtr("-5"), Charity: intPtr(50)}, result.InvalidAmount},
		{"charity out of range", dataset.ImportedItem{Author: "A", Title: "T",
			InitialAmount: decPtr("250"), Charity: intPtr(150)}, result.InvalidCharity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.checkImportedItemConsistency(tc.item))
		})
	}
}

const csvFixture = `Number,Owner,Author,Title,Medium,Note,InitialAmount,Charity
1,3,Painter,Still Life,Oil,framed,250,50
2,3,Sculptor,Bust,,,300,10
,,painter,STILL LIFE,,,100,50
,,,Orphan Title,,,,
`

func TestImportCSV(t *testing.T) {
	m := newTestModel(t)

	items, checksum, err := m.ImportCSV(testSessionID, strings.NewReader(csvFixture), true)
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, result.Success, items[0].Result)
	assert.Equal(t, 1, *items[0].Number)
	assert.Equal(t, 3, *items[0].Owner)
	assert.Equal(t, "framed", items[0].Note)
	assert.Equal(t, result.Success, items[1].Result)
	assert.Equal(t, result.DuplicateItem, items[2].Result)
	assert.Equal(t, result.InvalidAuthor, items[3].Result)
	assert.NotZero(t, checksum)

	// The staged batch is persisted in the session.
	stored, found := m.dataset.SessionValue(testSessionID, KeyImportedChecksum)
	require.True(t, found)
	assert.Equal(t, strconv.Itoa(checksum), stored)
	_, found = m.dataset.SessionValue(testSessionID, KeyImportedItems)
	assert.True(t, found)
}

func TestImportCSVWithoutHeader(t *testing.T) {
	m := newTestModel(t)

	items, _, err := m.ImportCSV(testSessionID,
		strings.NewReader("1,3,Painter,Still Life,,,250,50\n"), false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, result.Success, items[0].Result)
}

func TestImportCSVReplacesPendingImport(t *testing.T) {
	m := newTestModel(t)

	_, first, err := m.ImportCSV(testSessionID,
		strings.NewReader("1,3,Painter,Still Life,,,250,50\n"), false)
	require.NoError(t, err)
	_, second, err := m.ImportCSV(testSessionID,
		strings.NewReader("1,3,Sculptor,Bust,,,300,10\n"), false)
	require.NoError(t, err)

	// Only the second batch can be applied now.
	res, _, _ := m.ApplyImport(testSessionID, strconv.Itoa(first), "")
	assert.Equal(t, result.InvalidChecksum, res)
	res, _, _ = m.ApplyImport(testSessionID, strconv.Itoa(second), "")
	assert.Equal(t, result.Success, res)
}

func TestExtractTaggedValue(t *testing.T) {
	field, value, ok := extractTaggedValue("A) Number: 12")
	require.True(t, ok)
	assert.Equal(t, dataset.ImpNumber, field)
	assert.Equal(t, "12", value)

	// Leading decoration before the tag is dropped.
	field, value, ok = extractTaggedValue("** B) Author: Painter")
	require.True(t, ok)
	assert.Equal(t, dataset.ImpAuthor, field)
	assert.Equal(t, "Painter", value)

	field, value, ok = extractTaggedValue("E) Charity")
	require.True(t, ok)
	assert.Equal(t, dataset.ImpCharity, field)
	assert.Empty(t, value)

	_, _, ok = extractTaggedValue("just a remark")
	assert.False(t, ok)
	_, _, ok = extractTaggedValue("")
	assert.False(t, ok)
	_, _, ok = extractTaggedValue("***")
	assert.False(t, ok)
}

const textFixture = `Items offered by badge 3:

A) Number: 1
B) Author: Painter
C) Title: Still Life
D) Initial amount: 250
E) Charity: 50

A) Number: 2
B) Author: Sculptor
C) Title: Bust
`

func TestImportText(t *testing.T) {
	m := newTestModel(t)

	items, checksum, err := m.ImportText(testSessionID, textFixture)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotZero(t, checksum)

	assert.Equal(t, result.Success, items[0].Result)
	require.NotNil(t, items[0].Number)
	assert.Equal(t, 1, *items[0].Number)
	assert.Equal(t, "Painter", items[0].Author)
	assert.Equal(t, "Still Life", items[0].Title)
	require.NotNil(t, items[0].InitialAmount)
	assert.True(t, items[0].InitialAmount.Equal(dec("250")))
	require.NotNil(t, items[0].Charity)
	assert.Equal(t, 50, *items[0].Charity)

	// The second item has no sale info at all, which is valid.
	assert.Equal(t, result.Success, items[1].Result)
	assert.Nil(t, items[1].InitialAmount)

	// Text imports never carry an owner.
	assert.False(t, IsOwnerDefinedInImport(items))
}

func TestIsOwnerDefinedInImport(t *testing.T) {
	assert.True(t, IsOwnerDefinedInImport(nil))
	assert.True(t, IsOwnerDefinedInImport([]dataset.ImportedItem{
		{Owner: intPtr(3)}, {Owner: intPtr(7)},
	}))
	assert.False(t, IsOwnerDefinedInImport([]dataset.ImportedItem{
		{Owner: intPtr(3)}, {},
	}))
}

func TestApplyImport(t *testing.T) {
	m := newTestModel(t)

	_, checksum, err := m.ImportCSV(testSessionID, strings.NewReader(csvFixture), true)
	require.NoError(t, err)

	res, skipped, renumbered := m.ApplyImport(testSessionID, strconv.Itoa(checksum), "")
	require.Equal(t, result.Success, res)
	assert.Empty(t, renumbered)
	require.Len(t, skipped, 2)
	assert.Equal(t, result.DuplicateItem, skipped[0].Result)
	assert.Equal(t, result.InvalidAuthor, skipped[1].Result)

	// Items follow their import numbers.
	assert.Equal(t, []string{"1", "2"}, m.Added(testSessionID))
	item, found := m.dataset.Item("1")
	require.True(t, found)
	assert.Equal(t, dataset.StateOnSale, item.State)
	assert.Equal(t, 3, item.Owner)
	require.NotNil(t, item.ImportNumber)
	assert.Equal(t, 1, *item.ImportNumber)

	// The batch is dropped once applied.
	res, _, _ = m.ApplyImport(testSessionID, strconv.Itoa(checksum), "")
	assert.Equal(t, result.NoImport, res)
}

func TestApplyImportGates(t *testing.T) {
	m := newTestModel(t)

	res, _, _ := m.ApplyImport(testSessionID, "0", "")
	assert.Equal(t, result.NoImport, res)

	_, checksum, err := m.ImportCSV(testSessionID,
		strings.NewReader("1,3,Painter,Still Life,,,250,50\n"), false)
	require.NoError(t, err)

	res, _, _ = m.ApplyImport(testSessionID, strconv.Itoa(checksum+1), "")
	assert.Equal(t, result.InvalidChecksum, res)
	res, _, _ = m.ApplyImport(testSessionID, "garbage", "")
	assert.Equal(t, result.InvalidChecksum, res)

	// A bad default owner rejects the batch but keeps it staged.
	res, _, _ = m.ApplyImport(testSessionID, strconv.Itoa(checksum), "nobody")
	assert.Equal(t, result.InputError, res)
	res, _, _ = m.ApplyImport(testSessionID, strconv.Itoa(checksum), "3")
	assert.Equal(t, result.Success, res)
}

func TestApplyImportDefaultOwner(t *testing.T) {
	m := newTestModel(t)

	_, checksum, err := m.ImportText(testSessionID, textFixture)
	require.NoError(t, err)

	res, skipped, _ := m.ApplyImport(testSessionID, strconv.Itoa(checksum), "7")
	require.Equal(t, result.Success, res)
	assert.Empty(t, skipped)

	items := m.dataset.Items(nil)
	require.Len(t, items, 2)
	assert.Equal(t, 7, items[0].Owner)
	assert.Equal(t, 7, items[1].Owner)
}

func TestApplyImportRenumbers(t *testing.T) {
	m := newTestModel(t)
	_, res := m.AddNewItem(testSessionID, "7", "Taken", "Artist", "", "", "", "", "5")
	require.Equal(t, result.Success, res)

	// Import number 5 maps to a code that is already taken by another
	// owner's item, so the new item gets the next free code.
	_, checksum, err := m.ImportCSV(testSessionID,
		strings.NewReader("5,3,Painter,Still Life,,,250,50\n"), false)
	require.NoError(t, err)

	applyRes, skipped, renumbered := m.ApplyImport(testSessionID, strconv.Itoa(checksum), "")
	require.Equal(t, result.Success, applyRes)
	assert.Empty(t, skipped)
	require.Len(t, renumbered, 1)
	assert.Equal(t, "Painter", renumbered[0].Author)
	assert.Equal(t, "Still Life", renumbered[0].Title)
	assert.Equal(t, result.SuccessImportRenumbered, renumbered[0].Result)
	require.NotNil(t, renumbered[0].Number)
	assert.Equal(t, 6, *renumbered[0].Number)

	item, found := m.dataset.Item("6")
	require.True(t, found)
	assert.Equal(t, "Still Life", item.Title)
	require.NotNil(t, item.ImportNumber)
	assert.Equal(t, 5, *item.ImportNumber)
}

func TestApplyImportUpdatesExistingItem(t *testing.T) {
	m := newTestModel(t)
	code, res := m.AddNewItem(testSessionID, "3", "Still Life", "Painter", "", "250", "50", "", "5")
	require.Equal(t, result.Success, res)

	// Re-importing the same import number refreshes the item in place.
	_, checksum, err := m.ImportCSV(testSessionID,
		strings.NewReader("5,3,Painter,Still Life,,,300,40\n"), false)
	require.NoError(t, err)

	applyRes, skipped, renumbered := m.ApplyImport(testSessionID, strconv.Itoa(checksum), "")
	require.Equal(t, result.Success, applyRes)
	assert.Empty(t, skipped)
	assert.Empty(t, renumbered)

	item, found := m.dataset.Item(code)
	require.True(t, found)
	assert.True(t, item.InitialAmount.Equal(dec("300")))
	assert.Equal(t, 40, *item.Charity)
}

func TestApplyImportSkipsClosedItem(t *testing.T) {
	m := newTestModel(t)
	code, res := m.AddNewItem(testSessionID, "3", "Still Life", "Painter", "", "250", "50", "", "5")
	require.Equal(t, result.Success, res)
	require.Equal(t, result.Success, m.CloseItemAsSold(code, "300", "9"))

	_, checksum, err := m.ImportCSV(testSessionID,
		strings.NewReader("5,3,Painter,Still Life,,,400,40\n"), false)
	require.NoError(t, err)

	applyRes, skipped, _ := m.ApplyImport(testSessionID, strconv.Itoa(checksum), "")
	require.Equal(t, result.Success, applyRes)
	require.Len(t, skipped, 1)
	assert.Equal(t, result.ItemClosedAlready, skipped[0].Result)

	// The closed sale is untouched.
	item, _ := m.dataset.Item(code)
	assert.True(t, item.InitialAmount.Equal(dec("250")))
	assert.Equal(t, dataset.StateSold, item.State)
}

func TestDropImport(t *testing.T) {
	m := newTestModel(t)

	_, checksum, err := m.ImportCSV(testSessionID,
		strings.NewReader("1,3,Painter,Still Life,,,250,50\n"), false)
	require.NoError(t, err)

	m.DropImport(testSessionID)
	res, _, _ := m.ApplyImport(testSessionID, strconv.Itoa(checksum), "")
	assert.Equal(t, result.NoImport, res)
}
