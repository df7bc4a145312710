// Package normalize derives calendar fields from raw travel dates and filters
// long-form records by variable.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

// DatePolicy decides what a batch does with an unparseable date.
type DatePolicy int

const (
	DatePolicyUnset DatePolicy = iota
	// DatePolicyAbort stops at the first bad date.
	DatePolicyAbort
	// DatePolicySkip drops bad rows and reports each of them.
	DatePolicySkip
)

func ParseDatePolicy(s string) (DatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return DatePolicyAbort, nil
	case "skip":
		return DatePolicySkip, nil
	}
	return DatePolicyUnset, fmt.Errorf("unknown date policy %q: %w", s, constants.ErrDatePolicyUnset)
}

func (p DatePolicy) String() string {
	switch p {
	case DatePolicyAbort:
		return "abort"
	case DatePolicySkip:
		return "skip"
	}
	return "unset"
}

var DefaultLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "2006/01/02"}

type Normalizer struct {
	policy  DatePolicy
	layouts []string
}

// New returns a normalizer trying layouts in order. Nil layouts means DefaultLayouts.
func New(policy DatePolicy, layouts []string) *Normalizer {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	return &Normalizer{
		policy:  policy,
		layouts: append([]string(nil), layouts...),
	}
}

func (n *Normalizer) Policy() DatePolicy { return n.policy }

// DeriveYear returns copies of records with Date and Year set. Under the skip
// policy the dropped rows come back as the second result.
func (n *Normalizer) DeriveYear(records []domain.Record) ([]domain.Record, []*constants.DateParseError, error) {
	return derive(n, records)
}

func (n *Normalizer) DeriveYearWide(records []domain.WideRecord) ([]domain.WideRecord, []*constants.DateParseError, error) {
	return derive(n, records)
}

type dated[T any] interface {
	RawDate() string
	Dated(time.Time) T
}

func derive[T dated[T]](n *Normalizer, records []T) ([]T, []*constants.DateParseError, error) {
	if n.policy != DatePolicyAbort && n.policy != DatePolicySkip {
		return nil, nil, constants.ErrDatePolicyUnset
	}

	out := make([]T, 0, len(records))
	var skipped []*constants.DateParseError
	for i, r := range records {
		t, err := n.parse(r.RawDate())
		if err != nil {
			dateErr := &constants.DateParseError{Row: i, Value: r.RawDate()}
			if n.policy == DatePolicyAbort {
				return nil, nil, dateErr
			}
			skipped = append(skipped, dateErr)
			continue
		}
		out = append(out, r.Dated(t))
	}

	return out, skipped, nil
}

func (n *Normalizer) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range n.layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FilterByVariable keeps records whose variable is in set, in input order.
func FilterByVariable(records []domain.Record, set []domain.Variable) []domain.Record {
	keep := make(map[domain.Variable]struct{}, len(set))
	for _, v := range set {
		keep[v] = struct{}{}
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if _, ok := keep[r.Variable]; ok {
			out = append(out, r)
		}
	}
	return out
}
