package forecast

import (
	"errors"
	"math"
	"testing"

	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

func TestHoltLinearSeries(t *testing.T) {
	// a perfectly linear series is extrapolated exactly whatever the smoothing
	got, err := Holt([]float64{10, 20, 30, 40}, 0.8, 0.2, 3)
	if err != nil {
		t.Fatalf("Holt: %v", err)
	}

	for i, want := range []float64{50, 60, 70} {
		if math.Abs(got[i]-want) > 1e-9 {
			t.Errorf("step %d: got %v, want %v", i+1, got[i], want)
		}
	}
}

func TestHoltSmoothing(t *testing.T) {
	got, err := Holt([]float64{100, 120, 90}, 0.5, 0.5, 1)
	if err != nil {
		t.Fatalf("Holt: %v", err)
	}
	// level 120, trend 20; then level 0.5*90+0.5*140=115, trend 0.5*(-5)+0.5*20=7.5
	if want := 122.5; math.Abs(got[0]-want) > 1e-9 {
		t.Errorf("got %v, want %v", got[0], want)
	}
}

func TestHoltErrors(t *testing.T) {
	if _, err := Holt([]float64{1}, 0.5, 0.5, 1); !errors.Is(err, constants.ErrShortSeries) {
		t.Errorf("short series: %v", err)
	}
	if _, err := Holt([]float64{1, 2}, 0, 0.5, 1); !errors.Is(err, constants.ErrBadRequest) {
		t.Errorf("alpha: %v", err)
	}
	if _, err := Holt([]float64{1, 2}, 0.5, 0.5, 0); !errors.Is(err, constants.ErrBadRequest) {
		t.Errorf("horizon: %v", err)
	}
}
