// Package recovery computes how far a later year's value has recovered relative
// to a base year, per group of a year-pivoted table.
package recovery

import (
	"sort"
	"strconv"

	"github.com/ougirez/thaitourism/internal/domain"
)

// Rate classifies latest/base*100. Equal present values give exactly 100.
func Rate(base, latest domain.Cell) domain.Rate {
	b, okBase := base.Float()
	l, okLatest := latest.Float()
	switch {
	case !okBase || !okLatest:
		return domain.Rate{State: domain.RateUndefined}
	case b == 0 && l == 0:
		return domain.Rate{State: domain.RateUndefined}
	case b == 0:
		// отрицательный прирост от нуля не имеет смысла
		if l < 0 {
			return domain.Rate{State: domain.RateUndefined}
		}
		return domain.Rate{State: domain.RateInfinite}
	case b == l:
		return domain.Rate{State: domain.RateDefined, Value: 100}
	}
	return domain.Rate{State: domain.RateDefined, Value: l / b * 100}
}

// Calculate reads the base and latest year columns of t (column names are the
// decimal years, as produced by pivoting on year) for every row. Groups with a
// missing year column or cell are kept with an undefined rate. Rows come back
// with defined rates descending, then infinite, then undefined; ties keep
// table order.
func Calculate(t *domain.Table, indexColumn string, baseYear, latestYear domain.Year) ([]domain.RecoveryRow, error) {
	idx, err := t.Lookup(indexColumn)
	if err != nil {
		return nil, err
	}
	ki := idx[0]
	bi := t.Index(strconv.Itoa(baseYear))
	li := t.Index(strconv.Itoa(latestYear))

	rows := make([]domain.RecoveryRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := domain.RecoveryRow{
			Key:         row[ki].String(),
			BaseValue:   cellAt(row, bi),
			LatestValue: cellAt(row, li),
		}
		r.Rate = Rate(r.BaseValue, r.LatestValue)
		rows = append(rows, r)
	}

	Sort(rows)
	return rows, nil
}

// Sort orders rows in place: defined descending, infinite, undefined. Stable.
func Sort(rows []domain.RecoveryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Rate, rows[j].Rate
		if ra, rb := stateRank(a.State), stateRank(b.State); ra != rb {
			return ra < rb
		}
		return a.State == domain.RateDefined && a.Value > b.Value
	})
}

func stateRank(s domain.RateState) int {
	switch s {
	case domain.RateDefined:
		return 0
	case domain.RateInfinite:
		return 1
	}
	return 2
}

func cellAt(row []domain.Cell, i int) domain.Cell {
	if i < 0 {
		return domain.Missing()
	}
	return row[i]
}
