// Package aggregate groups tables and records by tuples of dimension values and
// reduces numeric columns with sum or mean. Groups come out in first-seen order.
package aggregate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"github.com/shopspring/decimal"
)

// Reduction applies Reducer to Column.
type Reduction struct {
	Column  string
	Reducer domain.Reducer
}

// ReductionsFor returns each variable's declared reduction.
func ReductionsFor(variables []domain.Variable) []Reduction {
	out := make([]Reduction, 0, len(variables))
	for _, v := range variables {
		out = append(out, Reduction{Column: string(v), Reducer: v.Reducer()})
	}
	return out
}

type accumulator struct {
	sum   decimal.Decimal
	count int64
}

// add rejects NaN and infinities, decimal cannot hold them.
func (a *accumulator) add(f float64, column string) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("column %s: non-finite value %v", column, f)
	}
	a.sum = a.sum.Add(decimal.NewFromFloat(f))
	a.count++
	return nil
}

func (a *accumulator) reduce(r domain.Reducer, key []string, column string) (domain.Cell, error) {
	switch r {
	case domain.ReducerSum:
		if a.count == 0 {
			return domain.Missing(), nil
		}
		return domain.Number(a.sum.InexactFloat64()), nil
	case domain.ReducerMean:
		if a.count == 0 {
			return domain.Cell{}, &constants.EmptyGroupError{Key: key, Column: column}
		}
		return domain.Number(a.sum.Div(decimal.NewFromInt(a.count)).InexactFloat64()), nil
	}
	return domain.Cell{}, fmt.Errorf("column %s: unknown reducer %d", column, r)
}

type group struct {
	key  []domain.Cell
	accs []accumulator
}

// Table groups t by groupKeys and reduces each listed column. The result has the
// group-key columns followed by the reduced columns. Missing cells are not values:
// a sum over none of them is missing, a mean over none of them is an EmptyGroupError.
func Table(t *domain.Table, groupKeys []string, reductions []Reduction) (*domain.Table, error) {
	keyIdx, err := t.Lookup(groupKeys...)
	if err != nil {
		return nil, err
	}
	valueColumns := make([]string, len(reductions))
	for i, r := range reductions {
		valueColumns[i] = r.Column
	}
	valueIdx, err := t.Lookup(valueColumns...)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*group)
	var order []*group
	for _, row := range t.Rows {
		key := make([]domain.Cell, len(keyIdx))
		for i, idx := range keyIdx {
			key[i] = row[idx]
		}

		k := domain.Key(key)
		g, ok := groups[k]
		if !ok {
			g = &group{key: key, accs: make([]accumulator, len(reductions))}
			groups[k] = g
			order = append(order, g)
		}

		for i, idx := range valueIdx {
			cell := row[idx]
			if cell.IsMissing() {
				continue
			}
			f, ok := cell.Float()
			if !ok {
				return nil, fmt.Errorf("column %s: non-numeric value %q", valueColumns[i], cell.Text)
			}
			if err := g.accs[i].add(f, valueColumns[i]); err != nil {
				return nil, err
			}
		}
	}

	out := domain.NewTable(append(append([]string(nil), groupKeys...), valueColumns...)...)
	out.Rows = make([][]domain.Cell, 0, len(order))
	for _, g := range order {
		row := append([]domain.Cell(nil), g.key...)
		for i, r := range reductions {
			cell, err := g.accs[i].reduce(r.Reducer, domain.Strings(g.key), r.Column)
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
		}
		out.Append(row...)
	}

	return out, nil
}

// Wide groups wide records by dims and reduces the given variables with their
// declared reducers.
func Wide(records []domain.WideRecord, dims []string, variables []domain.Variable) (*domain.Table, error) {
	return Table(domain.WideTable(records), dims, ReductionsFor(variables))
}

// Summaries groups long records by dims plus the variable, reducing each group
// with the variable's declared reducer.
func Summaries(records []domain.Record, dims []string) ([]domain.GroupSummary, error) {
	type summaryGroup struct {
		key      []string
		variable domain.Variable
		acc      accumulator
	}

	groups := make(map[string]*summaryGroup)
	var order []*summaryGroup
	for _, r := range records {
		key := make([]string, len(dims))
		for i, dim := range dims {
			v, err := dimension(r, dim)
			if err != nil {
				return nil, err
			}
			key[i] = v
		}

		k := strings.Join(append(key, string(r.Variable)), "\x1f")
		g, ok := groups[k]
		if !ok {
			g = &summaryGroup{key: key, variable: r.Variable}
			groups[k] = g
			order = append(order, g)
		}
		if err := g.acc.add(r.Value, string(r.Variable)); err != nil {
			return nil, err
		}
	}

	out := make([]domain.GroupSummary, 0, len(order))
	for _, g := range order {
		cell, err := g.acc.reduce(g.variable.Reducer(), g.key, string(g.variable))
		if err != nil {
			return nil, err
		}
		out = append(out, domain.GroupSummary{Key: g.key, Variable: g.variable, Value: cell.Number})
	}

	return out, nil
}

func dimension(r domain.Record, dim string) (string, error) {
	switch dim {
	case domain.ColTravelDate:
		return r.TravelDate, nil
	case domain.ColYear:
		return strconv.Itoa(r.Year), nil
	case domain.ColRegion:
		return string(r.Region), nil
	case domain.ColProvince:
		return r.Province, nil
	case domain.ColVariable:
		return string(r.Variable), nil
	}
	return "", &constants.SchemaError{Source: "records", Missing: []string{dim}}
}
