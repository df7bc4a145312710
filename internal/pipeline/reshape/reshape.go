// Package reshape converts tables between long and wide layouts.
package reshape

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

// Melt emits, for every row of t and every value column in order, one row of
// ids..., variable, value. An empty values list melts every non-id column.
func Melt(t *domain.Table, ids, values []string) (*domain.Table, error) {
	if len(values) == 0 {
		values = complement(t.Columns, ids)
	}

	idIdx, err := t.Lookup(ids...)
	if err != nil {
		return nil, err
	}
	valueIdx, err := t.Lookup(values...)
	if err != nil {
		return nil, err
	}

	out := domain.NewTable(append(append([]string(nil), ids...), domain.ColVariable, domain.ColValue)...)
	out.Rows = make([][]domain.Cell, 0, len(t.Rows)*len(values))
	for _, row := range t.Rows {
		for j, vi := range valueIdx {
			cells := make([]domain.Cell, 0, len(ids)+2)
			for _, ii := range idIdx {
				cells = append(cells, row[ii])
			}
			cells = append(cells, domain.Text(values[j]), row[vi])
			out.Append(cells...)
		}
	}

	return out, nil
}

// Pivot emits one row per distinct index tuple and one column per distinct
// value of column, both in first-seen order. Absent combinations hold the
// missing marker. Two rows for the same (index, column) pair fail.
func Pivot(t *domain.Table, index []string, column, value string) (*domain.Table, error) {
	idIdx, err := t.Lookup(index...)
	if err != nil {
		return nil, err
	}
	cv, err := t.Lookup(column, value)
	if err != nil {
		return nil, err
	}
	colIdx, valIdx := cv[0], cv[1]

	type entry struct {
		id     []domain.Cell
		values map[string]domain.Cell
	}

	var (
		entries   = make(map[string]*entry)
		order     []*entry
		newCols   []string
		seenCols  = make(map[string]struct{})
		indexCols = make(map[string]struct{}, len(index))
	)
	for _, c := range index {
		indexCols[c] = struct{}{}
	}

	for _, row := range t.Rows {
		id := make([]domain.Cell, len(idIdx))
		for i, ii := range idIdx {
			id[i] = row[ii]
		}
		key := domain.Key(id)

		e, ok := entries[key]
		if !ok {
			e = &entry{id: id, values: make(map[string]domain.Cell)}
			entries[key] = e
			order = append(order, e)
		}

		name := row[colIdx].String()
		if _, ok := indexCols[name]; ok {
			return nil, fmt.Errorf("pivot: column value %q collides with an index column", name)
		}
		if _, ok := e.values[name]; ok {
			return nil, &constants.DuplicateEntryError{Index: domain.Strings(id), Column: name}
		}
		e.values[name] = row[valIdx]

		if _, ok := seenCols[name]; !ok {
			seenCols[name] = struct{}{}
			newCols = append(newCols, name)
		}
	}

	out := domain.NewTable(append(append([]string(nil), index...), newCols...)...)
	out.Rows = make([][]domain.Cell, 0, len(order))
	for _, e := range order {
		cells := append([]domain.Cell(nil), e.id...)
		for _, c := range newCols {
			// zero Cell is the missing marker
			cells = append(cells, e.values[c])
		}
		out.Append(cells...)
	}

	return out, nil
}

// InnerJoin pairs every left row with every right row sharing the key value.
// Output order follows left, then right. The key appears once.
func InnerJoin(left, right *domain.Table, key string) (*domain.Table, error) {
	li := left.Index(key)
	if li < 0 {
		return nil, &constants.SchemaError{Source: "left", Missing: []string{key}}
	}
	ri := right.Index(key)
	if ri < 0 {
		return nil, &constants.SchemaError{Source: "right", Missing: []string{key}}
	}

	columns := append([]string(nil), left.Columns...)
	var rightIdx []int
	for i, c := range right.Columns {
		if i == ri {
			continue
		}
		if left.Index(c) >= 0 {
			return nil, fmt.Errorf("join: column %q present on both sides", c)
		}
		columns = append(columns, c)
		rightIdx = append(rightIdx, i)
	}

	byKey := make(map[string][]int)
	for i, row := range right.Rows {
		k := domain.Key(row[ri : ri+1])
		byKey[k] = append(byKey[k], i)
	}

	out := domain.NewTable(columns...)
	for _, lrow := range left.Rows {
		for _, r := range byKey[domain.Key(lrow[li:li+1])] {
			cells := append([]domain.Cell(nil), lrow...)
			for _, idx := range rightIdx {
				cells = append(cells, right.Rows[r][idx])
			}
			out.Append(cells...)
		}
	}

	return out, nil
}

// Text renders t as tab-aligned columns with a header line.
func Text(t *domain.Table) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(domain.Strings(row), "\t"))
	}
	_ = w.Flush()
	return b.String()
}

func complement(all, drop []string) []string {
	skip := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		skip[d] = struct{}{}
	}
	var out []string
	for _, c := range all {
		if _, ok := skip[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
