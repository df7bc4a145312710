// Package display turns pipeline codes and magnitudes into chart-ready labels
// and fixes the order rows are shown in.
package display

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Context selects which label table a variable is looked up in.
type Context string

const (
	ContextTourist    Context = "tourist"
	ContextRevenue    Context = "revenue"
	ContextComparison Context = "comparison"
)

func ParseContext(s string) (Context, error) {
	switch c := Context(strings.ToLower(s)); c {
	case ContextTourist, ContextRevenue, ContextComparison:
		return c, nil
	}
	return "", fmt.Errorf("unknown display context %q: %w", s, constants.ErrBadRequest)
}

// Variables returns the variable set a context charts.
func (c Context) Variables() []domain.Variable {
	switch c {
	case ContextTourist:
		return domain.TouristCount()
	case ContextRevenue:
		return domain.Revenue()
	}
	return []domain.Variable{domain.NoTouristAll, domain.RevenueAll}
}

// ContextOf is the context whose label table names v.
func ContextOf(v domain.Variable) Context {
	switch v {
	case domain.RevenueAll, domain.RevenueForeign, domain.RevenueThai:
		return ContextRevenue
	case domain.NoTouristAll, domain.NoTouristForeign, domain.NoTouristThai:
		return ContextTourist
	}
	return ContextComparison
}

type Unit string

const (
	UnitThousand Unit = "thousand"
	UnitMillion  Unit = "million"
	UnitBillion  Unit = "billion"
)

func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(s)); u {
	case UnitThousand, UnitMillion, UnitBillion:
		return u, nil
	}
	return "", fmt.Errorf("unknown unit %q: %w", s, constants.ErrBadRequest)
}

// Labels are the code to label tables. Codes without a label render as themselves.
type Labels struct {
	Regions   map[domain.Region]string
	Variables map[Context]map[domain.Variable]string
}

func DefaultLabels() Labels {
	return Labels{
		Regions: map[domain.Region]string{
			domain.RegionCentral:       "Central",
			domain.RegionEast:          "East",
			domain.RegionEastNortheast: "Northeast",
			domain.RegionNorth:         "North",
			domain.RegionSouth:         "South",
		},
		Variables: map[Context]map[domain.Variable]string{
			ContextTourist: {
				domain.NoTouristAll:     "All tourists",
				domain.NoTouristThai:    "Thai tourists",
				domain.NoTouristForeign: "Foreign tourists",
			},
			ContextRevenue: {
				domain.RevenueAll:     "Revenue from all tourists",
				domain.RevenueThai:    "Revenue from Thai tourists",
				domain.RevenueForeign: "Revenue from foreign tourists",
			},
			ContextComparison: {
				domain.NoTouristAll:     "Tourist numbers",
				domain.RevenueAll:       "Revenue",
				domain.RatioTouristStay: "Occupancy rate",
			},
		},
	}
}

// LabelsFrom overlays configured tables on DefaultLabels.
func LabelsFrom(regions map[string]string, variables map[string]map[string]string) Labels {
	l := DefaultLabels()
	for code, label := range regions {
		l.Regions[domain.Region(code)] = label
	}
	for ctx, table := range variables {
		c := Context(ctx)
		if l.Variables[c] == nil {
			l.Variables[c] = make(map[domain.Variable]string, len(table))
		}
		for code, label := range table {
			l.Variables[c][domain.Variable(code)] = label
		}
	}
	return l
}

type Formatter struct {
	labels Labels
}

func New(labels Labels) *Formatter {
	return &Formatter{labels: labels}
}

func (f *Formatter) LabelVariable(v domain.Variable, ctx Context) string {
	if label, ok := f.labels.Variables[ctx][v]; ok {
		return label
	}
	return string(v)
}

func (f *Formatter) LabelRegion(r domain.Region) string {
	if label, ok := f.labels.Regions[r]; ok {
		return label
	}
	return string(r)
}

// OrderKey ranks thai before foreign before all. Anything else sorts after.
func OrderKey(v domain.Variable) int {
	switch v {
	case domain.NoTouristThai, domain.RevenueThai:
		return 1
	case domain.NoTouristForeign, domain.RevenueForeign:
		return 2
	case domain.NoTouristAll, domain.RevenueAll:
		return 3
	}
	return 4
}

// SortSummaries orders summaries by key then OrderKey. Stable.
func SortSummaries(s []domain.GroupSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i], s[j]
		if c := compareKeys(a.Key, b.Key); c != 0 {
			return c < 0
		}
		return OrderKey(a.Variable) < OrderKey(b.Variable)
	})
}

func compareKeys(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

var grouping = message.NewPrinter(language.English)

// MagnitudeLabel divides by the unit and truncates toward zero. Billions are
// printed with thousands separators. NaN and infinities are printed bare,
// quotients outside the int64 range in plain float notation.
func MagnitudeLabel(value float64, unit Unit) string {
	var (
		divisor float64
		suffix  string
	)
	switch unit {
	case UnitThousand:
		divisor, suffix = 1e3, "k"
	case UnitMillion:
		divisor, suffix = 1e6, "M"
	case UnitBillion:
		divisor, suffix = 1e9, "B"
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	q := math.Trunc(value / divisor)
	if q >= math.MaxInt64 || q <= math.MinInt64 {
		return strconv.FormatFloat(q, 'f', 0, 64) + suffix
	}
	if unit == UnitBillion {
		return grouping.Sprintf("%d", int64(q)) + suffix
	}
	return strconv.FormatInt(int64(q), 10) + suffix
}
