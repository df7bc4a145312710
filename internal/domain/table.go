package domain

import (
	"strconv"
	"strings"

	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

type CellKind uint8

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single table value. The zero Cell is the missing marker, which is
// never interchangeable with a zero number.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func Missing() Cell { return Cell{} }

func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

func (c Cell) IsMissing() bool { return c.Kind == CellMissing }

// Float returns the numeric value and whether the cell holds one.
func (c Cell) Float() (float64, bool) {
	if c.Kind != CellNumber {
		return 0, false
	}
	return c.Number, true
}

// String renders the cell the way it is used as a grouping key or column name.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return "NA"
}

// Compare orders cells: missing after everything, numbers numerically, text
// lexically, numbers before text.
func (c Cell) Compare(o Cell) int {
	if c.Kind != o.Kind {
		rank := func(k CellKind) int {
			switch k {
			case CellNumber:
				return 0
			case CellText:
				return 1
			}
			return 2
		}
		if rank(c.Kind) < rank(o.Kind) {
			return -1
		}
		return 1
	}
	switch c.Kind {
	case CellNumber:
		switch {
		case c.Number < o.Number:
			return -1
		case c.Number > o.Number:
			return 1
		}
	case CellText:
		switch {
		case c.Text < o.Text:
			return -1
		case c.Text > o.Text:
			return 1
		}
	}
	return 0
}

// Table is an ordered set of named columns and rows of cells. Every row has
// exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Append adds a row; short rows are padded with missing cells.
func (t *Table) Append(cells ...Cell) {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Value returns the cell at row i in column, or missing when the column is unknown.
func (t *Table) Value(i int, column string) Cell {
	idx := t.Index(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return Missing()
	}
	return t.Rows[i][idx]
}

// Lookup returns the positions of columns or a SchemaError naming every absent one.
func (t *Table) Lookup(columns ...string) ([]int, error) {
	idx := make([]int, len(columns))
	var missing []string
	for i, c := range columns {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &constants.SchemaError{Source: "table", Missing: missing}
	}
	return idx, nil
}

func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// LongTable lays records out as travel_date, year, region_eng, province_eng,
// variable, value. Year is missing for records the normalizer has not seen.
func LongTable(records []Record) *Table {
	t := NewTable(ColTravelDate, ColYear, ColRegion, ColProvince, ColVariable, ColValue)
	t.Rows = make([][]Cell, 0, len(records))
	for _, r := range records {
		t.Append(
			Text(r.TravelDate),
			yearCell(r.Year),
			Text(string(r.Region)),
			Text(r.Province),
			Text(string(r.Variable)),
			Number(r.Value),
		)
	}
	return t
}

// WideTable lays records out with one column per variable.
func WideTable(records []WideRecord) *Table {
	cols := []string{ColTravelDate, ColYear, ColRegion, ColProvince}
	for _, v := range Variables() {
		cols = append(cols, string(v))
	}
	t := NewTable(cols...)
	t.Rows = make([][]Cell, 0, len(records))
	for _, r := range records {
		row := []Cell{Text(r.TravelDate), yearCell(r.Year), Text(string(r.Region)), Text(r.Province)}
		for _, v := range Variables() {
			row = append(row, Number(r.Value(v)))
		}
		t.Append(row...)
	}
	return t
}

func yearCell(y Year) Cell {
	if y == 0 {
		return Missing()
	}
	return Number(float64(y))
}

// Key encodes a tuple of cells for hashing: equal tuples and only equal tuples
// share a key.
func Key(cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteByte('0' + byte(c.Kind))
		b.WriteString(c.String())
		b.WriteByte(0x1f)
	}
	return b.String()
}

func Strings(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}
