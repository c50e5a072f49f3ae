// Package regression fits and applies a linear model on transformed
// feature matrices. The solve itself is delegated to gonum.
package regression

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ridge is added to the normal-equation diagonal so that constant or
// collinear features do not make the system singular.
const ridge = 1e-8

const modelVersion = 1

// Linear is an ordinary least squares model with an intercept.
type Linear struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Fit solves (XᵀX + λI)β = Xᵀy for β with the intercept left unpenalized.
func Fit(x mat.Matrix, y []float64) (*Linear, error) {
	n, p := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("fit linear model: %d rows but %d targets", n, len(y))
	}
	if n == 0 || p == 0 {
		return nil, errors.New("fit linear model: empty design matrix")
	}
	if floats.HasNaN(y) {
		return nil, errors.New("fit linear model: target contains missing values")
	}

	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 1; j <= p; j++ {
		gram.Set(j, j, gram.At(j, j)+ridge)
	}

	var rhs mat.VecDense
	rhs.MulVec(design.T(), mat.NewVecDense(n, y))

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("fit linear model: solve: %w", err)
		}
	}

	coef := make([]float64, p)
	for j := range coef {
		coef[j] = beta.AtVec(j + 1)
	}
	m := &Linear{Intercept: beta.AtVec(0), Coefficients: coef}
	if math.IsNaN(m.Intercept) || floats.HasNaN(coef) {
		return nil, errors.New("fit linear model: solution is not finite")
	}
	return m, nil
}

// Predict returns one estimate per row of x.
func (m *Linear) Predict(x mat.Matrix) ([]float64, error) {
	n, p := x.Dims()
	if p != len(m.Coefficients) {
		return nil, fmt.Errorf("predict: got %d features, model expects %d", p, len(m.Coefficients))
	}

	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(p, m.Coefficients))

	preds := make([]float64, n)
	for i := range preds {
		preds[i] = out.AtVec(i) + m.Intercept
	}
	return preds, nil
}

type modelArtifact struct {
	Version int `json:"version"`
	Linear
}

func (m *Linear) Encode() ([]byte, error) {
	return json.Marshal(modelArtifact{Version: modelVersion, Linear: *m})
}

func Decode(data []byte) (*Linear, error) {
	var a modelArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if a.Version != modelVersion {
		return nil, fmt.Errorf("decode model: version %d not supported (want %d)", a.Version, modelVersion)
	}
	if len(a.Coefficients) == 0 {
		return nil, errors.New("decode model: no coefficients")
	}
	return &a.Linear, nil
}

// Scores summarizes predictive quality on a held-out set.
type Scores struct {
	R2   float64
	MAE  float64
	RMSE float64
}

func Evaluate(truth, preds []float64) (Scores, error) {
	if len(truth) != len(preds) || len(truth) == 0 {
		return Scores{}, fmt.Errorf("evaluate: %d targets vs %d predictions", len(truth), len(preds))
	}

	n := float64(len(truth))
	mean := floats.Sum(truth) / n

	var ssRes, ssTot, absErr float64
	for i, t := range truth {
		d := t - preds[i]
		ssRes += d * d
		absErr += math.Abs(d)
		ssTot += (t - mean) * (t - mean)
	}

	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	} else if ssRes > 0 {
		r2 = 0
	}

	return Scores{R2: r2, MAE: absErr / n, RMSE: math.Sqrt(ssRes / n)}, nil
}
