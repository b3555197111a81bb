package fixturecast

import (
	"errors"
	"fmt"
	"math"
)

// ErrScalerNotFitted is returned when transforming with an empty scaler
var ErrScalerNotFitted = errors.New("scaler has not been fitted")

// Scaler standardises features to zero mean and unit (population) variance.
// A constant feature keeps a scale of 1 so it maps to 0 rather than NaN.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Fit learns per-column means and standard deviations from x
func (s *Scaler) Fit(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("cannot fit scaler on no rows: %w", ErrInsufficientData)
	}
	width := len(x[0])
	mean := make([]float64, width)
	for r, row := range x {
		if len(row) != width {
			return fmt.Errorf("row %d has %d columns, expected %d", r, len(row), width)
		}
		for c, v := range row {
			mean[c] += v
		}
	}
	n := float64(len(x))
	for c := range mean {
		mean[c] /= n
	}

	scale := make([]float64, width)
	for _, row := range x {
		for c, v := range row {
			d := v - mean[c]
			scale[c] += d * d
		}
	}
	for c := range scale {
		scale[c] = math.Sqrt(scale[c] / n)
		if scale[c] == 0 {
			scale[c] = 1
		}
	}
	s.Mean, s.Scale = mean, scale
	return nil
}

// Transform returns a scaled copy of x using the fitted parameters
func (s *Scaler) Transform(x [][]float64) ([][]float64, error) {
	if len(s.Mean) == 0 {
		return nil, ErrScalerNotFitted
	}
	out := make([][]float64, len(x))
	for r, row := range x {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("row %d has %d columns, scaler was fitted on %d", r, len(row), len(s.Mean))
		}
		scaled := make([]float64, len(row))
		for c, v := range row {
			scaled[c] = (v - s.Mean[c]) / s.Scale[c]
		}
		out[r] = scaled
	}
	return out, nil
}

// FitTransform fits on x and returns x scaled
func (s *Scaler) FitTransform(x [][]float64) ([][]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// validate checks parameters restored from an artifact
func (s *Scaler) validate(width int) error {
	if s == nil || len(s.Mean) != width || len(s.Scale) != width {
		return fmt.Errorf("scaler does not cover %d features", width)
	}
	for c, v := range s.Scale {
		if v <= 0 || math.IsNaN(v) {
			return fmt.Errorf("scaler column %d has invalid scale %f", c, v)
		}
	}
	return nil
}
