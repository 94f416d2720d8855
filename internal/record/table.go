package record

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// Row holds one record as column name → value. An absent key is an unset
// column; the store never stores empty-string markers for "no value".
type Row map[string]string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an in-memory list of rows persisted as a flat XML document.
//
// All reads and writes are synchronous and single-writer; the table does
// no locking. Mutations flip a dirty flag which gates Save, so an
// unchanged table costs nothing to flush.
type Table struct {
	logger    *slog.Logger
	path      string
	bakPath   string
	newPath   string
	tableName string
	rowName   string
	columns   []string
	rows      []Row
	changed   bool
}

// New creates an empty table backed by the document at path. tableName is
// the expected root element, rowName the per-row element, and columns the
// declared column set written on save (in order).
func New(logger *slog.Logger, path, tableName, rowName string, columns []string) *Table {
	return &Table{
		logger:    logger,
		path:      path,
		bakPath:   path + ".bak",
		newPath:   path + ".new",
		tableName: tableName,
		rowName:   rowName,
		columns:   columns,
	}
}

// Len returns the number of rows currently in memory.
func (t *Table) Len() int { return len(t.rows) }

// Changed reports whether the table has been mutated since the last
// successful Load or Save.
func (t *Table) Changed() bool { return t.changed }

// Load replaces the in-memory rows with the contents of the backing
// document. A missing file is not an error: the current rows are kept and
// a warning is logged. A document whose root element does not match the
// table name is an error and leaves the rows untouched.
func (t *Table) Load() error {
	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("table file not found, keeping rows",
				"path", t.path, "rows", len(t.rows))
			return nil
		}
		return fmt.Errorf("load %s: %w", t.path, err)
	}
	defer file.Close()

	rows, err := t.parse(file)
	if err != nil {
		t.logger.Error("table load failed", "path", t.path, "error", err)
		return fmt.Errorf("load %s: %w", t.path, err)
	}

	t.rows = rows
	t.changed = false
	t.logger.Info("table loaded", "path", t.path, "rows", len(t.rows))
	return nil
}

func (t *Table) parse(r io.Reader) ([]Row, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("reading document root: %w", err)
	}
	if root.Name.Local != t.tableName {
		return nil, fmt.Errorf("document root %q does not match expected root %q",
			root.Name.Local, t.tableName)
	}

	var rows []Row
	for {
		rowStart, err := nextStart(dec)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading row element: %w", err)
		}
		if rowStart.Name.Local != t.rowName {
			t.logger.Error("skipping row with unexpected element",
				"element", rowStart.Name.Local, "expected", t.rowName)
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("skipping row element: %w", err)
			}
			continue
		}

		row, err := parseRow(dec)
		if err != nil {
			return nil, fmt.Errorf("reading row columns: %w", err)
		}
		rows = append(rows, row)
	}
}

// parseRow consumes column elements until the enclosing row element ends.
func parseRow(dec *xml.Decoder) (Row, error) {
	row := Row{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			var value string
			if err := dec.DecodeElement(&value, &tok); err != nil {
				return nil, err
			}
			if value != "" {
				row[tok.Name.Local] = value
			}
		case xml.EndElement:
			return row, nil
		}
	}
}

// nextStart advances the decoder to the next start element at any depth.
func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// Save serializes the table if it changed since the last Load/Save (or
// force is set). The document is written to a .new file first, then the
// previous document is rotated to .bak and the .new file moved into
// place. Missing current or backup files during rotation are tolerated.
func (t *Table) Save(force bool) error {
	if !force && !t.changed {
		t.logger.Info("not saving, no change", "path", t.path)
		return nil
	}

	if err := t.writeDocument(); err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}

	if err := os.Remove(t.bakPath); err != nil {
		t.logger.Debug("no backup file to remove", "path", t.bakPath)
	}
	if err := os.Rename(t.path, t.bakPath); err != nil {
		t.logger.Debug("no current file to rotate", "path", t.path)
	}
	if err := os.Rename(t.newPath, t.path); err != nil {
		return fmt.Errorf("save %s: %w", t.path, err)
	}

	t.changed = false
	t.logger.Info("table saved", "path", t.path, "rows", len(t.rows))
	return nil
}

func (t *Table) writeDocument() error {
	file, err := os.Create(t.newPath)
	if err != nil {
		return err
	}
	if err := t.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteTo writes the table document to w. Only declared columns with a
// value are written; rows with no writable column are omitted entirely.
func (t *Table) WriteTo(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	rootStart := xml.StartElement{Name: xml.Name{Local: t.tableName}}
	if err := enc.EncodeToken(rootStart); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.encodeRow(enc, row); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(rootStart.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func (t *Table) encodeRow(enc *xml.Encoder, row Row) error {
	populated := 0
	for _, col := range t.columns {
		if _, ok := row[col]; ok {
			populated++
		}
	}
	if populated == 0 {
		return nil
	}

	rowStart := xml.StartElement{Name: xml.Name{Local: t.rowName}}
	if err := enc.EncodeToken(rowStart); err != nil {
		return err
	}
	for _, col := range t.columns {
		value, ok := row[col]
		if !ok {
			continue
		}
		colStart := xml.StartElement{Name: xml.Name{Local: col}}
		if err := enc.EncodeElement(value, colStart); err != nil {
			return err
		}
	}
	return enc.EncodeToken(rowStart.End())
}

// Select returns the requested columns of every row matching f. Requested
// columns that are unset stay absent from the returned rows. A nil cols
// slice returns full row copies.
func (t *Table) Select(cols []string, f Filter) []Row {
	var result []Row
	for _, row := range t.rows {
		if !Matches(f, row) {
			continue
		}
		if cols == nil {
			result = append(result, row.Clone())
			continue
		}
		selected := make(Row, len(cols))
		for _, col := range cols {
			if v, ok := row[col]; ok {
				selected[col] = v
			}
		}
		result = append(result, selected)
	}
	t.logger.Debug("selected rows", "count", len(result), "filter", FilterString(f))
	return result
}

// Count returns the number of rows matching f.
func (t *Table) Count(f Filter) int {
	count := 0
	for _, row := range t.rows {
		if Matches(f, row) {
			count++
		}
	}
	return count
}

// Update applies values to every row matching f and returns the number of
// rows touched. A nil value pointer clears the column.
func (t *Table) Update(values map[string]*string, f Filter) int {
	updated := 0
	for _, row := range t.rows {
		if !Matches(f, row) {
			continue
		}
		for col, v := range values {
			if v == nil {
				delete(row, col)
			} else {
				row[col] = *v
			}
		}
		updated++
	}
	if updated > 0 {
		t.changed = true
	}
	t.logger.Info("updated rows", "count", updated, "filter", FilterString(f))
	return updated
}

// Insert appends values as a new row. If primaryKey is non-empty and some
// row already holds the same value in that column, the insert is rejected
// and false is returned.
func (t *Table) Insert(values Row, primaryKey string) bool {
	if primaryKey != "" {
		if t.Count(Equals{Field: primaryKey, Value: values[primaryKey]}) > 0 {
			t.logger.Info("insert rejected, primary key conflict",
				"column", primaryKey, "value", values[primaryKey])
			return false
		}
	}
	t.rows = append(t.rows, values.Clone())
	t.changed = true
	t.logger.Info("inserted row")
	return true
}

// Delete removes every row matching f and returns the number removed.
func (t *Table) Delete(f Filter) int {
	kept := t.rows[:0]
	deleted := 0
	for _, row := range t.rows {
		if Matches(f, row) {
			deleted++
		} else {
			kept = append(kept, row)
		}
	}
	t.rows = kept
	if deleted > 0 {
		t.changed = true
	}
	t.logger.Info("deleted rows", "count", deleted, "filter", FilterString(f))
	return deleted
}
