package transform

import (
	"delivery-eta-service/internal/domain"
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

var errNoObservations = errors.New("column has no observed values")

// MedianImputer replaces missing (NaN) values with the training median.
type MedianImputer struct {
	Statistic float64 `json:"statistic"`
}

func (m *MedianImputer) Fit(col []float64) error {
	obs := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			obs = append(obs, v)
		}
	}
	if len(obs) == 0 {
		return errNoObservations
	}

	slices.Sort(obs)
	n := len(obs)
	if n%2 == 1 {
		m.Statistic = obs[n/2]
	} else {
		m.Statistic = (obs[n/2-1] + obs[n/2]) / 2
	}
	return nil
}

func (m MedianImputer) Transform(col []float64) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		if math.IsNaN(v) {
			v = m.Statistic
		}
		out[i] = v
	}
	return out
}

// MostFrequentImputer replaces missing categorical cells with the training
// mode. Ties go to the lexically smallest value.
type MostFrequentImputer struct {
	Statistic string `json:"statistic"`
}

func (m *MostFrequentImputer) Fit(col []string, missing []bool) error {
	counts := make(map[string]int)
	for i, v := range col {
		if !missing[i] {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return errNoObservations
	}

	best, bestN := "", -1
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	m.Statistic = best
	return nil
}

func (m MostFrequentImputer) Transform(col []string, missing []bool) []string {
	out := make([]string, len(col))
	for i, v := range col {
		if missing[i] {
			v = m.Statistic
		}
		out[i] = v
	}
	return out
}

// OrdinalEncoder maps each category to its rank in a fixed vocabulary.
// Values outside the vocabulary are rejected, never defaulted.
type OrdinalEncoder struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`

	index map[string]int
}

func NewOrdinalEncoder(v domain.Vocabulary) OrdinalEncoder {
	e := OrdinalEncoder{Column: v.Column, Categories: slices.Clone(v.Values)}
	e.buildIndex()
	return e
}

func (e *OrdinalEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Categories))
	for i, c := range e.Categories {
		e.index[c] = i
	}
}

// Fit only checks that the training data stays inside the vocabulary;
// the categories themselves are fixed up front.
func (e *OrdinalEncoder) Fit(col []string) error {
	_, err := e.Transform(col)
	return err
}

func (e OrdinalEncoder) Transform(col []string) ([]float64, error) {
	out := make([]float64, len(col))
	for i, v := range col {
		rank, ok := e.index[v]
		if !ok {
			return nil, &domain.UnknownCategoryError{Column: e.Column, Value: v}
		}
		out[i] = float64(rank)
	}
	return out, nil
}

// StandardScaler centers a column on the training mean and divides by the
// training population standard deviation. Constant columns keep a scale of 1.
type StandardScaler struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

func (s *StandardScaler) Fit(col []float64) error {
	if len(col) == 0 {
		return errNoObservations
	}

	mean, variance := stat.PopMeanVariance(col, nil)
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(variance) {
		return errors.New("column mean or variance is not finite")
	}

	s.Mean = mean
	s.Scale = math.Sqrt(variance)
	if isConstant(variance, mean, len(col)) {
		s.Scale = 1
	}
	return nil
}

// isConstant treats variance that is within accumulated rounding error of
// zero as zero.
func isConstant(variance, mean float64, n int) bool {
	eps := math.Nextafter(1, 2) - 1
	nf := float64(n)
	bound := nf*eps*variance + (nf*mean*eps)*(nf*mean*eps)
	return variance <= bound
}

func (s StandardScaler) Transform(col []float64) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		out[i] = (v - s.Mean) / s.Scale
	}
	return out
}
