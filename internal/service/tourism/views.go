package tourism

import (
	"context"
	"fmt"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/domain/dto"
	"github.com/ougirez/thaitourism/internal/pipeline/aggregate"
	"github.com/ougirez/thaitourism/internal/pipeline/display"
	"github.com/ougirez/thaitourism/internal/pipeline/normalize"
	"github.com/ougirez/thaitourism/internal/pipeline/rank"
	"github.com/ougirez/thaitourism/internal/pipeline/reshape"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

// RegionDistribution sums the context's variables by region, labelled and in
// display order.
func (s *Service) RegionDistribution(ctx context.Context, c display.Context) ([]dto.DistributionRow, error) {
	return s.distribution(ctx, c, domain.ColRegion)
}

// ProvinceDistribution sums the context's variables by province.
func (s *Service) ProvinceDistribution(ctx context.Context, c display.Context) ([]dto.DistributionRow, error) {
	return s.distribution(ctx, c, domain.ColProvince)
}

func (s *Service) distribution(ctx context.Context, c display.Context, dim string) ([]dto.DistributionRow, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	records := normalize.FilterByVariable(ds.Original, c.Variables())
	summaries, err := aggregate.Summaries(records, []string{dim})
	if err != nil {
		return nil, fmt.Errorf("aggregate.Summaries: %w", err)
	}
	display.SortSummaries(summaries)

	rows := make([]dto.DistributionRow, 0, len(summaries))
	for _, sm := range summaries {
		group := sm.Key[0]
		label := group
		if dim == domain.ColRegion {
			label = s.formatter.LabelRegion(domain.Region(group))
		}
		rows = append(rows, dto.DistributionRow{
			Group:         group,
			GroupLabel:    label,
			Variable:      string(sm.Variable),
			VariableLabel: s.formatter.LabelVariable(sm.Variable, c),
			Value:         sm.Value,
			Order:         display.OrderKey(sm.Variable),
		})
	}

	return rows, nil
}

// TopProvinces ranks provinces by the reduced value of one variable over the
// long-form dataset. n == 0 means the configured default.
func (s *Service) TopProvinces(ctx context.Context, v domain.Variable, n int) ([]dto.RankedRow, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !v.Valid() {
		return nil, fmt.Errorf("unknown variable %q: %w", v, constants.ErrBadRequest)
	}

	t, err := provinceTable(ds.Original, v)
	if err != nil {
		return nil, err
	}
	top, err := rank.TopN(t, s.count(n), string(v), domain.ColProvince)
	if err != nil {
		return nil, fmt.Errorf("rank.TopN: %w", err)
	}

	return s.rankedRows(top, v, ""), nil
}

// ProvinceComparison takes the top provinces by tourist count, joins their
// revenue and lays both out long for a grouped chart.
func (s *Service) ProvinceComparison(ctx context.Context, n int) ([]dto.ComparisonRow, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	tourists, err := provinceTable(ds.Original, domain.NoTouristAll)
	if err != nil {
		return nil, err
	}
	top, err := rank.TopN(tourists, s.count(n), string(domain.NoTouristAll), domain.ColProvince)
	if err != nil {
		return nil, fmt.Errorf("rank.TopN: %w", err)
	}

	revenue, err := provinceTable(ds.Original, domain.RevenueAll)
	if err != nil {
		return nil, err
	}
	joined, err := reshape.InnerJoin(top, revenue, domain.ColProvince)
	if err != nil {
		return nil, fmt.Errorf("reshape.InnerJoin: %w", err)
	}
	long, err := reshape.Melt(joined, []string{domain.ColProvince}, []string{string(domain.NoTouristAll), string(domain.RevenueAll)})
	if err != nil {
		return nil, fmt.Errorf("reshape.Melt: %w", err)
	}

	rows := make([]dto.ComparisonRow, 0, long.Len())
	for i := range long.Rows {
		v := domain.Variable(long.Value(i, domain.ColVariable).Text)
		value, _ := long.Value(i, domain.ColValue).Float()
		rows = append(rows, dto.ComparisonRow{
			Province:      long.Value(i, domain.ColProvince).Text,
			Variable:      string(v),
			VariableLabel: s.formatter.LabelVariable(v, display.ContextComparison),
			Value:         value,
		})
	}

	return rows, nil
}

// TopProvincesInYear ranks provinces of the cleansed dataset within one year.
// Year zero means the latest year present.
func (s *Service) TopProvincesInYear(ctx context.Context, year domain.Year, v domain.Variable, n int) ([]dto.RankedRow, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !v.Valid() {
		return nil, fmt.Errorf("unknown variable %q: %w", v, constants.ErrBadRequest)
	}
	if year == 0 {
		years := ds.Years()
		if len(years) == 0 {
			return []dto.RankedRow{}, nil
		}
		year = years[len(years)-1]
	}

	inYear := make([]domain.WideRecord, 0, len(ds.Cleansed))
	for _, r := range ds.Cleansed {
		if r.Year == year {
			inYear = append(inYear, r)
		}
	}

	t, err := aggregate.Wide(inYear, []string{domain.ColProvince, domain.ColRegion}, []domain.Variable{v})
	if err != nil {
		return nil, fmt.Errorf("aggregate.Wide: %w", err)
	}
	top, err := rank.TopN(t, s.count(n), string(v), domain.ColProvince)
	if err != nil {
		return nil, fmt.Errorf("rank.TopN: %w", err)
	}

	return s.rankedRows(top, v, domain.ColRegion), nil
}

// provinceTable reduces one long-form variable by province into a two-column
// table named after the variable.
func provinceTable(records []domain.Record, v domain.Variable) (*domain.Table, error) {
	filtered := normalize.FilterByVariable(records, []domain.Variable{v})

	grouped, err := aggregate.Table(domain.LongTable(filtered),
		[]string{domain.ColProvince, domain.ColVariable},
		[]aggregate.Reduction{{Column: domain.ColValue, Reducer: v.Reducer()}},
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate.Table: %w", err)
	}

	wide, err := reshape.Pivot(grouped, []string{domain.ColProvince}, domain.ColVariable, domain.ColValue)
	if err != nil {
		return nil, fmt.Errorf("reshape.Pivot: %w", err)
	}
	if wide.Index(string(v)) < 0 {
		// нет ни одной записи, pivot не создал колонку
		return domain.NewTable(domain.ColProvince, string(v)), nil
	}
	return wide, nil
}

func (s *Service) rankedRows(t *domain.Table, v domain.Variable, regionColumn string) []dto.RankedRow {
	rows := make([]dto.RankedRow, 0, t.Len())
	for i := range t.Rows {
		value, _ := t.Value(i, string(v)).Float()
		row := dto.RankedRow{
			Rank:     i + 1,
			Province: t.Value(i, domain.ColProvince).Text,
			Value:    value,
		}
		if regionColumn != "" {
			row.Region = s.formatter.LabelRegion(domain.Region(t.Value(i, regionColumn).Text))
		}
		if unit, ok := unitFor(v); ok {
			row.Display = display.MagnitudeLabel(value, unit)
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Service) count(n int) int {
	if n == 0 {
		return s.opts.TopN
	}
	return n
}

func unitFor(v domain.Variable) (display.Unit, bool) {
	switch display.ContextOf(v) {
	case display.ContextRevenue:
		return display.UnitBillion, true
	case display.ContextTourist:
		return display.UnitMillion, true
	}
	return "", false
}
