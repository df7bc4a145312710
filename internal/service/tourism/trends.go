package tourism

import (
	"context"
	"fmt"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/domain/dto"
	"github.com/ougirez/thaitourism/internal/pipeline/aggregate"
	"github.com/ougirez/thaitourism/internal/pipeline/display"
	"github.com/ougirez/thaitourism/internal/pipeline/forecast"
	"github.com/ougirez/thaitourism/internal/pipeline/rank"
	"github.com/ougirez/thaitourism/internal/pipeline/recovery"
	"github.com/ougirez/thaitourism/internal/pipeline/reshape"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"sort"
	"strings"
)

var trendVariables = []domain.Variable{
	domain.NoTouristAll, domain.NoTouristThai, domain.NoTouristForeign,
	domain.RevenueAll, domain.RevenueThai, domain.RevenueForeign,
}

// YearlyTrend sums counts and revenue of the cleansed dataset per year.
func (s *Service) YearlyTrend(ctx context.Context) (*dto.Trend, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	series, years, err := s.yearlySeries(ds.Cleansed, trendVariables)
	if err != nil {
		return nil, err
	}
	return &dto.Trend{Years: years, Series: series}, nil
}

func (s *Service) yearlySeries(records []domain.WideRecord, variables []domain.Variable) ([]*dto.Series, []domain.Year, error) {
	t, err := aggregate.Wide(records, []string{domain.ColYear}, variables)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate.Wide: %w", err)
	}

	series := make([]*dto.Series, len(variables))
	for i, v := range variables {
		series[i] = dto.NewSeries(v, s.label(v))
	}

	years := make([]domain.Year, 0, t.Len())
	for i := range t.Rows {
		y, _ := t.Value(i, domain.ColYear).Float()
		year := domain.Year(y)
		years = append(years, year)

		for j, v := range variables {
			value, ok := t.Value(i, string(v)).Float()
			if !ok {
				continue
			}
			if err := series[j].PutData(year, value, unitName(v)); err != nil {
				return nil, nil, err
			}
		}
	}
	sort.Ints(years)

	return series, years, nil
}

// Recovery compares tourist counts per region between two years of the
// cleansed dataset. Zero years mean the configured base year and the latest
// year present.
func (s *Service) Recovery(ctx context.Context, baseYear, latestYear domain.Year) (*dto.Recovery, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if baseYear == 0 {
		baseYear = s.opts.BaseYear
	}
	if latestYear == 0 {
		if years := ds.Years(); len(years) > 0 {
			latestYear = years[len(years)-1]
		}
	}

	byYear, err := aggregate.Wide(ds.Cleansed, []string{domain.ColYear, domain.ColRegion}, []domain.Variable{domain.NoTouristAll})
	if err != nil {
		return nil, fmt.Errorf("aggregate.Wide: %w", err)
	}
	pivoted, err := reshape.Pivot(byYear, []string{domain.ColRegion}, domain.ColYear, string(domain.NoTouristAll))
	if err != nil {
		return nil, fmt.Errorf("reshape.Pivot: %w", err)
	}
	rows, err := recovery.Calculate(pivoted, domain.ColRegion, baseYear, latestYear)
	if err != nil {
		return nil, fmt.Errorf("recovery.Calculate: %w", err)
	}

	out := &dto.Recovery{BaseYear: baseYear, LatestYear: latestYear, Rows: make([]dto.RecoveryRow, 0, len(rows))}
	for _, r := range rows {
		row := dto.RecoveryRow{
			Region:      r.Key,
			RegionLabel: s.formatter.LabelRegion(domain.Region(r.Key)),
			BaseValue:   floatPtr(r.BaseValue),
			LatestValue: floatPtr(r.LatestValue),
			State:       r.Rate.State.String(),
		}
		if r.Rate.State == domain.RateDefined {
			rate := r.Rate.Value
			row.Rate = &rate
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

var overviewVariables = []domain.Variable{domain.NoTouristAll, domain.RevenueAll, domain.RatioTouristStay}

// overviewTopN is the length of both province rankings in the overview.
const overviewTopN = 5

type overviewTables struct {
	totals      *domain.Table
	regions     *domain.Table
	topTourists *domain.Table
	topRevenue  *domain.Table
}

func (s *Service) overview(ds []domain.WideRecord) (*overviewTables, error) {
	if len(ds) == 0 {
		return nil, &constants.EmptyGroupError{Column: string(domain.RatioTouristStay)}
	}

	totals, err := aggregate.Wide(ds, nil, domain.Variables())
	if err != nil {
		return nil, fmt.Errorf("aggregate.Wide, totals: %w", err)
	}

	regions, err := aggregate.Wide(ds, []string{domain.ColRegion}, overviewVariables)
	if err != nil {
		return nil, fmt.Errorf("aggregate.Wide, regions: %w", err)
	}
	sort.SliceStable(regions.Rows, func(i, j int) bool {
		return regions.Rows[i][0].Compare(regions.Rows[j][0]) < 0
	})

	provinces, err := aggregate.Wide(ds, []string{domain.ColProvince}, overviewVariables)
	if err != nil {
		return nil, fmt.Errorf("aggregate.Wide, provinces: %w", err)
	}
	topTourists, err := rank.TopN(provinces, overviewTopN, string(domain.NoTouristAll), domain.ColProvince)
	if err != nil {
		return nil, fmt.Errorf("rank.TopN, tourists: %w", err)
	}
	topRevenue, err := rank.TopN(provinces, overviewTopN, string(domain.RevenueAll), domain.ColProvince)
	if err != nil {
		return nil, fmt.Errorf("rank.TopN, revenue: %w", err)
	}

	return &overviewTables{totals: totals, regions: regions, topTourists: topTourists, topRevenue: topRevenue}, nil
}

// Overview is the headline summary: overall totals with the mean occupancy
// rate, regions by code, and the top provinces by tourists and by revenue.
func (s *Service) Overview(ctx context.Context) (*dto.Overview, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := s.overview(ds.Cleansed)
	if err != nil {
		return nil, err
	}

	value := func(t *domain.Table, i int, v domain.Variable) float64 {
		f, _ := t.Value(i, string(v)).Float()
		return f
	}

	out := &dto.Overview{
		Totals: dto.Totals{
			TotalTourists:        value(tables.totals, 0, domain.NoTouristAll),
			TotalForeignTourists: value(tables.totals, 0, domain.NoTouristForeign),
			TotalThaiTourists:    value(tables.totals, 0, domain.NoTouristThai),
			TotalRevenue:         value(tables.totals, 0, domain.RevenueAll),
			ForeignRevenue:       value(tables.totals, 0, domain.RevenueForeign),
			ThaiRevenue:          value(tables.totals, 0, domain.RevenueThai),
			AverageOccupancyRate: value(tables.totals, 0, domain.RatioTouristStay),
		},
	}

	for i := range tables.regions.Rows {
		key := tables.regions.Value(i, domain.ColRegion).Text
		out.Regions = append(out.Regions, dto.GroupRow{
			Key:           key,
			Label:         s.formatter.LabelRegion(domain.Region(key)),
			Tourists:      value(tables.regions, i, domain.NoTouristAll),
			Revenue:       value(tables.regions, i, domain.RevenueAll),
			OccupancyRate: value(tables.regions, i, domain.RatioTouristStay),
		})
	}
	provinceRows := func(t *domain.Table) []dto.GroupRow {
		rows := make([]dto.GroupRow, 0, t.Len())
		for i := range t.Rows {
			key := t.Value(i, domain.ColProvince).Text
			rows = append(rows, dto.GroupRow{
				Key:           key,
				Label:         key,
				Tourists:      value(t, i, domain.NoTouristAll),
				Revenue:       value(t, i, domain.RevenueAll),
				OccupancyRate: value(t, i, domain.RatioTouristStay),
			})
		}
		return rows
	}
	out.TopByTourists = provinceRows(tables.topTourists)
	out.TopByRevenue = provinceRows(tables.topRevenue)

	return out, nil
}

// Forecast extends the yearly tourist and revenue totals by horizon years.
// Zero horizon means the configured one.
func (s *Service) Forecast(ctx context.Context, horizon int) (*dto.Forecast, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if horizon == 0 {
		horizon = s.opts.Forecast.Horizon
	}

	variables := []domain.Variable{domain.NoTouristAll, domain.RevenueAll}
	history, years, err := s.yearlySeries(ds.Cleansed, variables)
	if err != nil {
		return nil, err
	}

	projected := make([]*dto.Series, len(variables))
	for i, v := range variables {
		projected[i] = dto.NewSeries(v, s.label(v))

		values := make([]float64, 0, len(years))
		for _, y := range years {
			values = append(values, history[i].YearData[y])
		}

		next, err := forecast.Holt(values, s.opts.Forecast.Alpha, s.opts.Forecast.Beta, horizon)
		if err != nil {
			return nil, fmt.Errorf("forecast.Holt, %s: %w", v, err)
		}
		for h, value := range next {
			if err := projected[i].PutData(years[len(years)-1]+h+1, value, unitName(v)); err != nil {
				return nil, err
			}
		}
	}

	return &dto.Forecast{History: history, Forecast: projected}, nil
}

// InsightPrompt renders the overview tables as text after the question. The
// returned string is all an insight worker gets.
func (s *Service) InsightPrompt(ctx context.Context, question string) (string, error) {
	ds, err := s.store.Get(ctx)
	if err != nil {
		return "", err
	}

	tables, err := s.overview(ds.Cleansed)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nOverall totals:\n")
	b.WriteString(reshape.Text(tables.totals))
	b.WriteString("\nBy region:\n")
	b.WriteString(reshape.Text(tables.regions))
	b.WriteString("\nTop provinces by tourists:\n")
	b.WriteString(reshape.Text(tables.topTourists))
	b.WriteString("\nTop provinces by revenue:\n")
	b.WriteString(reshape.Text(tables.topRevenue))
	return b.String(), nil
}

func (s *Service) label(v domain.Variable) string {
	return s.formatter.LabelVariable(v, display.ContextOf(v))
}

func unitName(v domain.Variable) string {
	switch display.ContextOf(v) {
	case display.ContextRevenue:
		return "THB"
	case display.ContextTourist:
		return "tourists"
	}
	return "ratio"
}

func floatPtr(c domain.Cell) *float64 {
	f, ok := c.Float()
	if !ok {
		return nil
	}
	return &f
}
