// Package forecast extrapolates yearly totals with Holt's linear trend method.
package forecast

import (
	"fmt"

	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

// Holt runs additive-trend exponential smoothing over series and returns the
// next horizon values. Level starts at the first observation, trend at the
// first difference.
func Holt(series []float64, alpha, beta float64, horizon int) ([]float64, error) {
	if len(series) < 2 {
		return nil, constants.ErrShortSeries
	}
	if alpha <= 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, fmt.Errorf("smoothing parameters out of range: alpha=%v beta=%v: %w", alpha, beta, constants.ErrBadRequest)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d: %w", horizon, constants.ErrBadRequest)
	}

	level, trend := series[0], series[1]-series[0]
	for _, y := range series[1:] {
		prev := level
		level = alpha*y + (1-alpha)*(level+trend)
		trend = beta*(level-prev) + (1-beta)*trend
	}

	out := make([]float64, horizon)
	for h := range out {
		out[h] = level + float64(h+1)*trend
	}
	return out, nil
}
