// Package rank selects the top rows of a table.
package rank

import (
	"sort"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

// TopN returns the first n rows of t sorted by sortColumn descending. Missing
// sort values rank last. Ties are broken by tieBreakColumn ascending when it is
// not empty, then by input order. Asking for more rows than t has is fine.
func TopN(t *domain.Table, n int, sortColumn, tieBreakColumn string) (*domain.Table, error) {
	if n <= 0 {
		return nil, &constants.InvalidCountError{N: n}
	}

	columns := []string{sortColumn}
	if tieBreakColumn != "" {
		columns = append(columns, tieBreakColumn)
	}
	idx, err := t.Lookup(columns...)
	if err != nil {
		return nil, err
	}
	si, ti := idx[0], -1
	if len(idx) > 1 {
		ti = idx[1]
	}

	sorted := t.Clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		a, b := sorted.Rows[i], sorted.Rows[j]
		if c := compareDesc(a[si], b[si]); c != 0 {
			return c < 0
		}
		if ti >= 0 {
			return a[ti].Compare(b[ti]) < 0
		}
		return false
	})

	if n < len(sorted.Rows) {
		sorted.Rows = sorted.Rows[:n]
	}
	return sorted, nil
}

// compareDesc orders numbers high to low and keeps missing cells last.
func compareDesc(a, b domain.Cell) int {
	am, bm := a.IsMissing(), b.IsMissing()
	switch {
	case am && bm:
		return 0
	case am:
		return 1
	case bm:
		return -1
	}
	return b.Compare(a)
}
