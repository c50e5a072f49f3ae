package transform

import (
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/dataset"
	"delivery-eta-service/internal/domain"
	"errors"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

var header = domain.FeatureColumns()

// Columns: age, ratings, vehicle condition, multiple deliveries, distance,
// weather, traffic, order, vehicle, festival, city.
var trainRows = [][]string{
	{"30", "4.5", "1", "1", "5.2", "Sunny", "Low", "Snack", "motorcycle", "No", "Urban"},
	{"25", "4.8", "2", "0", "3.1", "Fog", "Jam", "Meal", "scooter", "Yes", "Metropolitian"},
	{"", "4.2", "0", "2", "10.0", "Fog", "High", "Drinks", "motorcycle", "No", "Semi-Urban"},
	{"38", "", "1", "1", "7.7", "", "Medium", "Buffet", "bicycle", "No", "Urban"},
}

func frame(t *testing.T, rows [][]string) dataframe.DataFrame {
	t.Helper()
	df, err := dataset.FromRows(header, rows)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	return df
}

func fittedPlan(t *testing.T) *Plan {
	t.Helper()
	p, err := NewPlan(DefaultSchema())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if err := p.Fit(frame(t, trainRows)); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return p
}

func TestFitTransformShapeAndFinite(t *testing.T) {
	p, err := NewPlan(DefaultSchema())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	out, err := p.FitTransform(frame(t, trainRows))
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	r, c := out.Dims()
	if r != 4 || c != 11 {
		t.Fatalf("dims = %dx%d, want 4x11", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := out.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("out[%d][%d] = %v, want finite", i, j, v)
			}
		}
	}
	if p.State() != Fitted {
		t.Fatalf("state = %v, want fitted", p.State())
	}
}

func TestFitTransformDeterministic(t *testing.T) {
	run := func() *mat.Dense {
		p, err := NewPlan(DefaultSchema())
		if err != nil {
			t.Fatalf("NewPlan: %v", err)
		}
		out, err := p.FitTransform(frame(t, trainRows))
		if err != nil {
			t.Fatalf("FitTransform: %v", err)
		}
		return out
	}

	a, b := run(), run()
	if !mat.Equal(a, b) {
		t.Fatalf("outputs differ:\n%v\n%v", mat.Formatted(a), mat.Formatted(b))
	}
}

func TestFittedStatistics(t *testing.T) {
	p := fittedPlan(t)

	age := p.numeric[0]
	// Observed ages 25, 30, 38 -> median 30; imputed column 30,25,30,38.
	if age.Imputer.Statistic != 30 {
		t.Fatalf("age median = %v, want 30", age.Imputer.Statistic)
	}
	if age.Scaler.Mean != 30.75 {
		t.Fatalf("age mean = %v, want 30.75", age.Scaler.Mean)
	}
	wantScale := math.Sqrt((0.75*0.75 + 5.75*5.75 + 0.75*0.75 + 7.25*7.25) / 4)
	if math.Abs(age.Scaler.Scale-wantScale) > 1e-12 {
		t.Fatalf("age scale = %v, want %v", age.Scaler.Scale, wantScale)
	}

	ratings := p.numeric[1]
	// Observed 4.2, 4.5, 4.8 -> median 4.5.
	if ratings.Imputer.Statistic != 4.5 {
		t.Fatalf("ratings median = %v, want 4.5", ratings.Imputer.Statistic)
	}

	weather := p.categorical[0]
	if weather.Imputer.Statistic != "Fog" {
		t.Fatalf("weather mode = %q, want Fog", weather.Imputer.Statistic)
	}
}

func TestTransformUsesTrainingStatisticsOnly(t *testing.T) {
	p := fittedPlan(t)
	median := p.numeric[0].Imputer.Statistic
	scaler := p.numeric[0].Scaler

	test := [][]string{
		{"", "4.9", "1", "1", "50", "Sunny", "Low", "Snack", "scooter", "Yes", "Urban"},
		{"", "3.0", "2", "3", "60", "Cloudy", "Jam", "Meal", "bicycle", "No", "Urban"},
	}
	out, err := p.Transform(frame(t, test))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	want := (median - scaler.Mean) / scaler.Scale
	for i := 0; i < 2; i++ {
		if got := out.At(i, 0); got != want {
			t.Fatalf("row %d age = %v, want %v", i, got, want)
		}
	}

	if p.numeric[0].Imputer.Statistic != median || p.numeric[0].Scaler != scaler {
		t.Fatal("transform changed fitted statistics")
	}
}

func TestOrdinalRanks(t *testing.T) {
	p := fittedPlan(t)
	enc := p.categorical[0].Encoder

	codes, err := enc.Transform([]string{"Fog", "Stormy", "Sandstorms", "Windy", "Cloudy", "Sunny"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range codes {
		if c != float64(i) {
			t.Fatalf("rank of %d = %v, want %d", i, c, i)
		}
	}
}

func TestTransformUnknownCategory(t *testing.T) {
	p := fittedPlan(t)

	row := append([]string(nil), trainRows[0]...)
	row[5] = "Tornado"
	_, err := p.Transform(frame(t, [][]string{row}))

	if !apperr.Is(err, apperr.KindInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	var uc *domain.UnknownCategoryError
	if !errors.As(err, &uc) || uc.Value != "Tornado" {
		t.Fatalf("expected UnknownCategoryError for Tornado, got %v", err)
	}
}

func TestTransformUnfitFailsFast(t *testing.T) {
	p, err := NewPlan(DefaultSchema())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	_, err = p.Transform(frame(t, trainRows))
	if !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if _, err := p.Encode(); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("Encode: expected ErrNotFitted, got %v", err)
	}
}

func TestRefitRejected(t *testing.T) {
	p := fittedPlan(t)
	before := p.numeric[0]

	other := [][]string{{"99", "1.0", "3", "3", "99", "Windy", "Low", "Meal", "bicycle", "Yes", "Urban"}}
	err := p.Fit(frame(t, other))
	if !errors.Is(err, ErrAlreadyFitted) {
		t.Fatalf("expected ErrAlreadyFitted, got %v", err)
	}
	if p.numeric[0] != before {
		t.Fatal("rejected refit changed statistics")
	}
}

func TestFitAllMissingColumn(t *testing.T) {
	rows := make([][]string, len(trainRows))
	for i, r := range trainRows {
		rows[i] = append([]string(nil), r...)
		rows[i][4] = ""
	}

	p, err := NewPlan(DefaultSchema())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	err = p.Fit(frame(t, rows))
	if !apperr.Is(err, apperr.KindNumeric) {
		t.Fatalf("expected numeric error, got %v", err)
	}
	if p.State() != Unfit {
		t.Fatalf("state after failed fit = %v, want unfit", p.State())
	}
}

func TestFitMissingColumn(t *testing.T) {
	df := frame(t, trainRows).Drop(domain.ColCity)

	p, err := NewPlan(DefaultSchema())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if err := p.Fit(df); !apperr.Is(err, apperr.KindDataShape) {
		t.Fatalf("expected data shape error, got %v", err)
	}
}

func TestTransformRejectsNonNumericText(t *testing.T) {
	p := fittedPlan(t)

	// Without pinned types every column loads as text.
	df := dataframe.LoadRecords(
		[][]string{header, {"thirty", "4.5", "1", "1", "5.2", "Sunny", "Low", "Snack", "motorcycle", "No", "Urban"}},
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		t.Fatalf("build frame: %v", df.Err)
	}

	if _, err := p.Transform(df); !apperr.Is(err, apperr.KindInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := fittedPlan(t)

	data, err := p.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	loaded, err := Decode(data, DefaultSchema())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if loaded.State() != Fitted {
		t.Fatalf("state = %v, want fitted", loaded.State())
	}

	df := frame(t, trainRows)
	want, err := p.Transform(df)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	got, err := loaded.Transform(df)
	if err != nil {
		t.Fatalf("Transform loaded: %v", err)
	}
	if !mat.Equal(got, want) {
		t.Fatal("loaded plan transforms differently")
	}

	if err := loaded.Fit(df); !errors.Is(err, ErrAlreadyFitted) {
		t.Fatalf("loaded plan accepted Fit: %v", err)
	}
}

func TestDecodeSchemaMismatch(t *testing.T) {
	data, err := fittedPlan(t).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	schema := DefaultSchema()
	schema.Categorical[0].Values = []string{"Sunny", "Fog"}
	if _, err := Decode(data, schema); !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}

	if _, err := Decode([]byte(`{"version":2}`), DefaultSchema()); err == nil {
		t.Fatal("expected version error")
	}
}

func TestNewPlanRejectsBadSchema(t *testing.T) {
	cases := map[string]Schema{
		"empty": {},
		"duplicate column": {
			Numeric: []string{"a", "a"},
		},
		"empty vocabulary": {
			Categorical: []domain.Vocabulary{{Column: "c"}},
		},
		"repeated value": {
			Categorical: []domain.Vocabulary{{Column: "c", Values: []string{"x", "x"}}},
		},
	}
	for name, s := range cases {
		if _, err := NewPlan(s); !apperr.Is(err, apperr.KindConfig) {
			t.Errorf("%s: expected config error, got %v", name, err)
		}
	}
}

func TestGroups(t *testing.T) {
	p, err := NewPlan(DefaultSchema())
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	g := p.Groups()
	if len(g) != 2 || g[0].Name != "num_pipeline" || g[1].Name != "cat_pipeline" {
		t.Fatalf("unexpected groups: %+v", g)
	}
	if len(g[0].Columns) != 5 || len(g[1].Columns) != 6 {
		t.Fatalf("unexpected group widths: %d, %d", len(g[0].Columns), len(g[1].Columns))
	}
	if got := g[1].Steps[1]; got != "ordinalencoder" {
		t.Fatalf("cat step 1 = %q, want ordinalencoder", got)
	}
}
