package transform

import (
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
)

// State is the lifecycle position of a Plan.
type State int

const (
	Unfit State = iota
	Fitting
	Fitted
)

func (s State) String() string {
	switch s {
	case Unfit:
		return "unfit"
	case Fitting:
		return "fitting"
	case Fitted:
		return "fitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrNotFitted     = errors.New("plan is not fitted")
	ErrAlreadyFitted = errors.New("plan was already fitted; build a new plan to refit")
)

const artifactVersion = 1

type numericPipeline struct {
	Column  string         `json:"column"`
	Imputer MedianImputer  `json:"imputer"`
	Scaler  StandardScaler `json:"scaler"`
}

type categoricalPipeline struct {
	Column  string              `json:"column"`
	Imputer MostFrequentImputer `json:"imputer"`
	Encoder OrdinalEncoder      `json:"ordinalencoder"`
	Scaler  StandardScaler      `json:"scaler"`
}

// Group describes one sub-pipeline of a plan.
type Group struct {
	Name    string
	Columns []string
	Steps   []string
}

// Plan turns raw delivery tables into standardized feature matrices.
// A plan is fitted once; after that it only transforms. Statistics are
// never recomputed from the data being transformed.
type Plan struct {
	schema      Schema
	state       State
	numeric     []numericPipeline
	categorical []categoricalPipeline
}

// NewPlan builds an unfit plan for schema.
func NewPlan(schema Schema) (*Plan, error) {
	if err := schema.Validate(); err != nil {
		return nil, apperr.E(apperr.KindConfig, "transform.NewPlan", err)
	}
	return &Plan{schema: schema.clone(), state: Unfit}, nil
}

func (p *Plan) State() State { return p.state }

// Groups lists the sub-pipelines in output order.
func (p *Plan) Groups() []Group {
	cat := make([]string, 0, len(p.schema.Categorical))
	for _, v := range p.schema.Categorical {
		cat = append(cat, v.Column)
	}
	return []Group{
		{Name: "num_pipeline", Columns: append([]string(nil), p.schema.Numeric...), Steps: []string{"imputer", "scaler"}},
		{Name: "cat_pipeline", Columns: cat, Steps: []string{"imputer", "ordinalencoder", "scaler"}},
	}
}

// Fit computes every statistic from df. Nothing is committed unless all
// columns fit, so a failed Fit leaves the plan unfit.
func (p *Plan) Fit(df dataframe.DataFrame) error {
	const op = "transform.Plan.Fit"

	if p.state != Unfit {
		return apperr.E(apperr.KindInternal, op, ErrAlreadyFitted)
	}
	if err := checkFrame(df, p.schema.Columns()); err != nil {
		return apperr.E(apperr.KindDataShape, op, err)
	}

	p.state = Fitting

	numeric, categorical, err := p.fitPipelines(df)
	if err != nil {
		p.state = Unfit
		return apperr.E(apperr.KindNumeric, op, err)
	}

	p.numeric = numeric
	p.categorical = categorical
	p.state = Fitted
	return nil
}

func (p *Plan) fitPipelines(df dataframe.DataFrame) ([]numericPipeline, []categoricalPipeline, error) {
	numeric := make([]numericPipeline, 0, len(p.schema.Numeric))
	for _, col := range p.schema.Numeric {
		values, err := numericColumn(df, col)
		if err != nil {
			return nil, nil, err
		}

		np := numericPipeline{Column: col}
		if err := np.Imputer.Fit(values); err != nil {
			return nil, nil, fmt.Errorf("fit median imputer on %s: %w", col, err)
		}
		if err := np.Scaler.Fit(np.Imputer.Transform(values)); err != nil {
			return nil, nil, fmt.Errorf("fit scaler on %s: %w", col, err)
		}
		numeric = append(numeric, np)
	}

	categorical := make([]categoricalPipeline, 0, len(p.schema.Categorical))
	for _, vocab := range p.schema.Categorical {
		values, missing := categoricalColumn(df, vocab.Column)

		cp := categoricalPipeline{Column: vocab.Column, Encoder: NewOrdinalEncoder(vocab)}
		if err := cp.Imputer.Fit(values, missing); err != nil {
			return nil, nil, fmt.Errorf("fit most frequent imputer on %s: %w", vocab.Column, err)
		}
		codes, err := cp.Encoder.Transform(cp.Imputer.Transform(values, missing))
		if err != nil {
			return nil, nil, fmt.Errorf("fit ordinal encoder: %w", err)
		}
		if err := cp.Scaler.Fit(codes); err != nil {
			return nil, nil, fmt.Errorf("fit scaler on %s: %w", vocab.Column, err)
		}
		categorical = append(categorical, cp)
	}

	return numeric, categorical, nil
}

// Transform applies the fitted statistics to df. The result has one row per
// input row: numeric columns first, then categorical columns.
func (p *Plan) Transform(df dataframe.DataFrame) (*mat.Dense, error) {
	const op = "transform.Plan.Transform"

	if p.state != Fitted {
		return nil, apperr.E(apperr.KindInternal, op, ErrNotFitted)
	}
	if err := checkFrame(df, p.schema.Columns()); err != nil {
		return nil, apperr.E(apperr.KindDataShape, op, err)
	}

	out := mat.NewDense(df.Nrow(), p.schema.Width(), nil)

	for j, np := range p.numeric {
		values, err := numericColumn(df, np.Column)
		if err != nil {
			return nil, apperr.E(apperr.KindInput, op, err)
		}
		out.SetCol(j, np.Scaler.Transform(np.Imputer.Transform(values)))
	}

	offset := len(p.numeric)
	for j, cp := range p.categorical {
		values, missing := categoricalColumn(df, cp.Column)
		codes, err := cp.Encoder.Transform(cp.Imputer.Transform(values, missing))
		if err != nil {
			return nil, apperr.E(apperr.KindInput, op, err)
		}
		out.SetCol(offset+j, cp.Scaler.Transform(codes))
	}

	return out, nil
}

// FitTransform fits the plan on df and transforms the same frame.
func (p *Plan) FitTransform(df dataframe.DataFrame) (*mat.Dense, error) {
	if err := p.Fit(df); err != nil {
		return nil, err
	}
	return p.Transform(df)
}

type artifact struct {
	Version     int                   `json:"version"`
	Numeric     []numericPipeline     `json:"num_pipeline"`
	Categorical []categoricalPipeline `json:"cat_pipeline"`
}

// Encode serializes a fitted plan.
func (p *Plan) Encode() ([]byte, error) {
	const op = "transform.Plan.Encode"

	if p.state != Fitted {
		return nil, apperr.E(apperr.KindInternal, op, ErrNotFitted)
	}

	data, err := json.Marshal(artifact{
		Version:     artifactVersion,
		Numeric:     p.numeric,
		Categorical: p.categorical,
	})
	if err != nil {
		return nil, apperr.E(apperr.KindStorage, op, err)
	}
	return data, nil
}

// Decode restores a fitted plan and checks that it was fitted for schema.
func Decode(data []byte, schema Schema) (*Plan, error) {
	const op = "transform.Decode"

	if err := schema.Validate(); err != nil {
		return nil, apperr.E(apperr.KindConfig, op, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, apperr.E(apperr.KindStorage, op, fmt.Errorf("parse plan: %w", err))
	}
	if a.Version != artifactVersion {
		return nil, apperr.Errorf(apperr.KindStorage, op, "plan version %d not supported (want %d)", a.Version, artifactVersion)
	}

	stored := Schema{}
	for _, np := range a.Numeric {
		stored.Numeric = append(stored.Numeric, np.Column)
		if err := checkScaler(np.Column, np.Scaler); err != nil {
			return nil, apperr.E(apperr.KindStorage, op, err)
		}
	}
	for i := range a.Categorical {
		cp := &a.Categorical[i]
		if cp.Encoder.Column != cp.Column {
			return nil, apperr.Errorf(apperr.KindStorage, op, "encoder column %q does not match %q", cp.Encoder.Column, cp.Column)
		}
		if err := checkScaler(cp.Column, cp.Scaler); err != nil {
			return nil, apperr.E(apperr.KindStorage, op, err)
		}
		cp.Encoder.buildIndex()
		stored.Categorical = append(stored.Categorical, domain.Vocabulary{Column: cp.Column, Values: cp.Encoder.Categories})
	}

	if err := schema.equal(stored); err != nil {
		return nil, apperr.E(apperr.KindStorage, op, fmt.Errorf("stored plan does not match schema: %w", err))
	}

	return &Plan{
		schema:      schema.clone(),
		state:       Fitted,
		numeric:     a.Numeric,
		categorical: a.Categorical,
	}, nil
}

func checkScaler(col string, s StandardScaler) error {
	if math.IsNaN(s.Mean) || math.IsInf(s.Mean, 0) || !(s.Scale > 0) || math.IsInf(s.Scale, 0) {
		return fmt.Errorf("invalid scaler for %s: mean=%v scale=%v", col, s.Mean, s.Scale)
	}
	return nil
}

// checkFrame verifies that df is non-empty and has every required column.
func checkFrame(df dataframe.DataFrame, required []string) error {
	if df.Err != nil {
		return fmt.Errorf("invalid table: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return errors.New("table has no rows")
	}

	have := make(map[string]struct{}, df.Ncol())
	for _, n := range df.Names() {
		have[n] = struct{}{}
	}

	var missing []string
	for _, col := range required {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// numericColumn reads a column as floats with NaN marking missing cells.
// Text that is present but not a finite number is an error.
func numericColumn(df dataframe.DataFrame, name string) ([]float64, error) {
	s := df.Col(name)

	switch s.Type() {
	case series.Float, series.Int:
		values := s.Float()
		for i, v := range values {
			if math.IsInf(v, 0) {
				return nil, fmt.Errorf("column %s row %d: value is not finite", name, i)
			}
		}
		return values, nil
	}

	records := s.Records()
	nan := s.IsNaN()
	values := make([]float64, len(records))
	for i, r := range records {
		r = strings.TrimSpace(r)
		if nan[i] || r == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(r, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("column %s row %d: %q is not a finite number", name, i, r)
		}
		values[i] = v
	}
	return values, nil
}

// categoricalColumn reads a column as text plus a missing-cell mask.
func categoricalColumn(df dataframe.DataFrame, name string) ([]string, []bool) {
	s := df.Col(name)
	records := s.Records()
	nan := s.IsNaN()

	missing := make([]bool, len(records))
	for i, r := range records {
		records[i] = strings.TrimSpace(r)
		missing[i] = nan[i] || records[i] == ""
	}
	return records, missing
}
