package domain

import "time"

type Year = int
type YearData = map[Year]float64

// Column names shared by the source schemas and the tables built from them.
const (
	ColTravelDate = "travel_date"
	ColYear       = "year"
	ColRegion     = "region_eng"
	ColProvince   = "province_eng"
	ColVariable   = "variable"
	ColValue      = "value"
)

type Region string

const (
	RegionCentral       Region = "central"
	RegionEast          Region = "east"
	RegionEastNortheast Region = "east_northeast"
	RegionNorth         Region = "north"
	RegionSouth         Region = "south"
)

func Regions() []Region {
	return []Region{RegionCentral, RegionEast, RegionEastNortheast, RegionNorth, RegionSouth}
}

func (r Region) Valid() bool {
	switch r {
	case RegionCentral, RegionEast, RegionEastNortheast, RegionNorth, RegionSouth:
		return true
	}
	return false
}

type Reducer int

const (
	ReducerSum Reducer = iota + 1
	ReducerMean
)

func (r Reducer) String() string {
	switch r {
	case ReducerSum:
		return "sum"
	case ReducerMean:
		return "mean"
	}
	return "unknown"
}

type Variable string

const (
	NoTouristAll     Variable = "no_tourist_all"
	NoTouristForeign Variable = "no_tourist_foreign"
	NoTouristThai    Variable = "no_tourist_thai"
	RevenueAll       Variable = "revenue_all"
	RevenueForeign   Variable = "revenue_foreign"
	RevenueThai      Variable = "revenue_thai"
	RatioTouristStay Variable = "ratio_tourist_stay"
)

// Variables returns every variable in wide-schema column order.
func Variables() []Variable {
	return []Variable{
		NoTouristAll, NoTouristForeign, NoTouristThai,
		RevenueAll, RevenueForeign, RevenueThai,
		RatioTouristStay,
	}
}

// TouristCount is the tourist-count variable set.
func TouristCount() []Variable {
	return []Variable{NoTouristAll, NoTouristForeign, NoTouristThai}
}

// Revenue is the revenue variable set.
func Revenue() []Variable {
	return []Variable{RevenueAll, RevenueForeign, RevenueThai}
}

func (v Variable) Valid() bool {
	for _, known := range Variables() {
		if v == known {
			return true
		}
	}
	return false
}

// Reducer is the declared reduction for the variable: ratios are averaged,
// counts and revenue are summed.
func (v Variable) Reducer() Reducer {
	if v == RatioTouristStay {
		return ReducerMean
	}
	return ReducerSum
}

// Record is one long-form observation. Date and Year stay zero until the
// normalizer parses TravelDate.
type Record struct {
	TravelDate string
	Date       time.Time
	Year       Year
	Region     Region
	Province   string
	Variable   Variable
	Value      float64
}

func (r Record) RawDate() string { return r.TravelDate }

func (r Record) Dated(t time.Time) Record {
	r.Date = t
	r.Year = t.Year()
	return r
}

// WideRecord is one row of the cleansed dataset with every measurement present.
type WideRecord struct {
	TravelDate       string
	Date             time.Time
	Year             Year
	Region           Region
	Province         string
	NoTouristAll     float64
	NoTouristForeign float64
	NoTouristThai    float64
	RevenueAll       float64
	RevenueForeign   float64
	RevenueThai      float64
	RatioTouristStay float64
}

func (r WideRecord) RawDate() string { return r.TravelDate }

func (r WideRecord) Dated(t time.Time) WideRecord {
	r.Date = t
	r.Year = t.Year()
	return r
}

func (r WideRecord) Value(v Variable) float64 {
	switch v {
	case NoTouristAll:
		return r.NoTouristAll
	case NoTouristForeign:
		return r.NoTouristForeign
	case NoTouristThai:
		return r.NoTouristThai
	case RevenueAll:
		return r.RevenueAll
	case RevenueForeign:
		return r.RevenueForeign
	case RevenueThai:
		return r.RevenueThai
	case RatioTouristStay:
		return r.RatioTouristStay
	}
	return 0
}

// GroupSummary is one reduced group: Key holds the group's dimension values
// in the order the dimensions were requested.
type GroupSummary struct {
	Key      []string
	Variable Variable
	Value    float64
}

type RateState int

const (
	RateDefined RateState = iota
	RateUndefined
	RateInfinite
)

func (s RateState) String() string {
	switch s {
	case RateDefined:
		return "defined"
	case RateUndefined:
		return "undefined"
	case RateInfinite:
		return "infinite"
	}
	return "unknown"
}

// Rate is a recovery percentage. Value is meaningful only when State is RateDefined.
type Rate struct {
	State RateState
	Value float64
}

type RecoveryRow struct {
	Key         string
	BaseValue   Cell
	LatestValue Cell
	Rate        Rate
}
