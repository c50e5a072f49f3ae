package services

import (
	"context"
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/dataset"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/transform"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

// Artifact names under the artifact store.
const (
	PreprocessorArtifact = "preprocessor"
	ModelArtifact        = "model"
)

// DataTransformation builds, fits, persists and applies the preprocessing plan.
type DataTransformation struct {
	Store  ports.ArtifactStore
	Log    *slog.Logger
	Schema transform.Schema
}

func NewDataTransformation(store ports.ArtifactStore, log *slog.Logger) *DataTransformation {
	if log == nil {
		log = slog.Default()
	}
	return &DataTransformation{Store: store, Log: log, Schema: transform.DefaultSchema()}
}

// fail logs err and returns it as an *apperr.Error of the given kind.
func (d *DataTransformation) fail(op string, kind apperr.Kind, err error) error {
	e := apperr.E(kind, op, err)
	d.Log.Error("data transformation failed", "op", op, "kind", e.Kind.String(), "err", err)
	return e
}

// BuildPlan returns a new unfit plan for the configured schema.
func (d *DataTransformation) BuildPlan() (*transform.Plan, error) {
	const op = "DataTransformation.BuildPlan"

	d.Log.Info("Data Transformation Initiated")

	p, err := transform.NewPlan(d.Schema)
	if err != nil {
		return nil, d.fail(op, apperr.KindConfig, err)
	}

	d.Log.Info("Pipeline Completed", "groups", len(p.Groups()))
	return p, nil
}

// FitAndTransform fits a fresh plan on the train features, transforms both
// tables with it, appends the untransformed target as the last column and
// persists the fitted plan. The test table never influences any statistic.
func (d *DataTransformation) FitAndTransform(ctx context.Context, train, test dataframe.DataFrame) (trainArr, testArr *mat.Dense, location string, err error) {
	const op = "DataTransformation.FitAndTransform"
	defer obs.Time(ctx, d.Log, op)(&err)

	d.Log.Info("Read train and test data completed", "train_rows", train.Nrow(), "test_rows", test.Nrow())

	required := append(domain.FeatureColumns(), domain.ColTarget)
	for _, t := range []struct {
		name string
		df   dataframe.DataFrame
	}{{"train", train}, {"test", test}} {
		if err := requireColumns(t.df, required); err != nil {
			return nil, nil, "", d.fail(op, apperr.KindDataShape, fmt.Errorf("%s table: %w", t.name, err))
		}
		if t.df.Nrow() == 0 {
			return nil, nil, "", d.fail(op, apperr.KindDataShape, fmt.Errorf("%s table has no rows", t.name))
		}
	}

	trainX, trainY, err := dataset.SplitTarget(train, domain.ColTarget)
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindDataShape, err)
	}
	testX, testY, err := dataset.SplitTarget(test, domain.ColTarget)
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindDataShape, err)
	}

	plan, err := d.BuildPlan()
	if err != nil {
		return nil, nil, "", err
	}

	d.Log.Info("Applying preprocessing object on training and testing datasets")

	trainFeat, err := plan.FitTransform(trainX)
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindNumeric, err)
	}
	testFeat, err := plan.Transform(testX)
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindNumeric, err)
	}

	data, err := plan.Encode()
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindInternal, err)
	}
	if err := d.Store.Save(ctx, PreprocessorArtifact, data); err != nil {
		return nil, nil, "", d.fail(op, apperr.KindStorage, err)
	}

	location = d.Store.Location(PreprocessorArtifact)
	d.Log.Info("preprocessor saved", "location", location)

	return withTarget(trainFeat, trainY), withTarget(testFeat, testY), location, nil
}

// TransformFiles reads the train and test CSV tables and runs FitAndTransform.
func (d *DataTransformation) TransformFiles(ctx context.Context, trainPath, testPath string) (*mat.Dense, *mat.Dense, string, error) {
	const op = "DataTransformation.TransformFiles"

	train, err := dataset.ReadCSVFile(trainPath)
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindDataShape, err)
	}
	test, err := dataset.ReadCSVFile(testPath)
	if err != nil {
		return nil, nil, "", d.fail(op, apperr.KindDataShape, err)
	}
	return d.FitAndTransform(ctx, train, test)
}

// LoadPlan reads and decodes the persisted plan.
func (d *DataTransformation) LoadPlan(ctx context.Context) (*transform.Plan, error) {
	const op = "DataTransformation.LoadPlan"

	data, err := d.Store.Load(ctx, PreprocessorArtifact)
	if err != nil {
		if errors.Is(err, ports.ErrArtifactNotFound) {
			err = fmt.Errorf("no fitted preprocessor at %s: %w", d.Store.Location(PreprocessorArtifact), err)
		}
		return nil, d.fail(op, apperr.KindStorage, err)
	}

	p, err := transform.Decode(data, d.Schema)
	if err != nil {
		return nil, d.fail(op, apperr.KindStorage, err)
	}
	return p, nil
}

// TransformFrame applies the persisted plan to an inference table.
func (d *DataTransformation) TransformFrame(ctx context.Context, df dataframe.DataFrame) (*mat.Dense, error) {
	const op = "DataTransformation.TransformFrame"

	plan, err := d.LoadPlan(ctx)
	if err != nil {
		return nil, err
	}

	out, err := plan.Transform(df)
	if err != nil {
		return nil, d.fail(op, apperr.KindInput, err)
	}
	return out, nil
}

// Apply turns one record into its feature vector using the persisted plan.
// It never refits and has no side effects, so repeated calls agree.
func (d *DataTransformation) Apply(ctx context.Context, rec domain.Record) ([]float64, error) {
	const op = "DataTransformation.Apply"

	if err := rec.Validate(); err != nil {
		return nil, d.fail(op, apperr.KindInput, err)
	}

	df, err := dataset.FromRecord(rec)
	if err != nil {
		return nil, d.fail(op, apperr.KindInput, err)
	}

	out, err := d.TransformFrame(ctx, df)
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, out), nil
}

func requireColumns(df dataframe.DataFrame, required []string) error {
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}

	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns %v", missing)
	}
	return nil
}

// withTarget returns features with y appended as an extra last column.
func withTarget(features *mat.Dense, y []float64) *mat.Dense {
	r, _ := features.Dims()
	var out mat.Dense
	out.Augment(features, mat.NewVecDense(r, y))
	return &out
}
