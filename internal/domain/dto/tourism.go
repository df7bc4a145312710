package dto

import (
	"fmt"
	"github.com/ougirez/thaitourism/internal/domain"
	"sort"
	"sync"
	"time"
)

// Series is one variable's values by year. PutData may be called from several
// goroutines.
type Series struct {
	Variable   domain.Variable `json:"variable"`
	Label      string          `json:"label"`
	Unit       string          `json:"unit"`
	YearData   domain.YearData `json:"year_data"`
	yearDataMx sync.Mutex
}

func NewSeries(variable domain.Variable, label string) *Series {
	return &Series{Variable: variable, Label: label, YearData: make(domain.YearData)}
}

func (s *Series) PutData(year domain.Year, data float64, unit string) error {
	s.yearDataMx.Lock()
	defer s.yearDataMx.Unlock()

	if s.Unit == "" {
		s.Unit = unit
	} else if s.Unit != unit {
		return fmt.Errorf("different units for one series: %s and %s", s.Unit, unit)
	}

	s.YearData[year] = data
	return nil
}

// Years returns the series years ascending.
func (s *Series) Years() []domain.Year {
	s.yearDataMx.Lock()
	defer s.yearDataMx.Unlock()

	years := make([]domain.Year, 0, len(s.YearData))
	for y := range s.YearData {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

type DistributionRow struct {
	Group         string  `json:"group"`
	GroupLabel    string  `json:"group_label"`
	Variable      string  `json:"variable"`
	VariableLabel string  `json:"variable_label"`
	Value         float64 `json:"value"`
	Order         int     `json:"order"`
}

type RankedRow struct {
	Rank     int     `json:"rank"`
	Province string  `json:"province"`
	Region   string  `json:"region,omitempty"`
	Value    float64 `json:"value"`
	Display  string  `json:"display,omitempty"`
}

type ComparisonRow struct {
	Province      string  `json:"province"`
	Variable      string  `json:"variable"`
	VariableLabel string  `json:"variable_label"`
	Value         float64 `json:"value"`
}

type Trend struct {
	Years  []domain.Year `json:"years"`
	Series []*Series     `json:"series"`
}

// RecoveryRow carries nil values where the source year is missing and a nil
// Rate unless State is "defined".
type RecoveryRow struct {
	Region      string   `json:"region"`
	RegionLabel string   `json:"region_label"`
	BaseValue   *float64 `json:"base_value"`
	LatestValue *float64 `json:"latest_value"`
	Rate        *float64 `json:"rate"`
	State       string   `json:"state"`
}

type Recovery struct {
	BaseYear   domain.Year   `json:"base_year"`
	LatestYear domain.Year   `json:"latest_year"`
	Rows       []RecoveryRow `json:"rows"`
}

type Totals struct {
	TotalTourists        float64 `json:"total_tourists"`
	TotalForeignTourists float64 `json:"total_foreign_tourists"`
	TotalThaiTourists    float64 `json:"total_thai_tourists"`
	TotalRevenue         float64 `json:"total_revenue"`
	ForeignRevenue       float64 `json:"foreign_revenue"`
	ThaiRevenue          float64 `json:"thai_revenue"`
	AverageOccupancyRate float64 `json:"average_occupancy_rate"`
}

type GroupRow struct {
	Key           string  `json:"key"`
	Label         string  `json:"label"`
	Tourists      float64 `json:"no_tourist_all"`
	Revenue       float64 `json:"revenue_all"`
	OccupancyRate float64 `json:"ratio_tourist_stay"`
}

type Overview struct {
	Totals        Totals     `json:"totals"`
	Regions       []GroupRow `json:"regions"`
	TopByTourists []GroupRow `json:"top_provinces_tourists"`
	TopByRevenue  []GroupRow `json:"top_provinces_revenue"`
}

type Forecast struct {
	History  []*Series `json:"history"`
	Forecast []*Series `json:"forecast"`
}

type ReloadResult struct {
	Original int       `json:"original"`
	Cleansed int       `json:"cleansed"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loaded_at"`
}

type InsightRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type InsightResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}
