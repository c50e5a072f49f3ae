package services

import (
	"context"
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/dataset"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/metrics"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/regression"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// PredictRequest is a trip to estimate. When Record.DistanceInKM is not
// known, Pickup and Dropoff are used to look it up.
type PredictRequest struct {
	Record  domain.Record
	Pickup  *domain.Coordinates
	Dropoff *domain.Coordinates
}

// PredictPipeline loads the persisted preprocessor and model for every call
// and turns inference tables into delivery time estimates in minutes.
type PredictPipeline struct {
	Transformer *DataTransformation
	Store       ports.ArtifactStore
	Distance    ports.DistanceProvider
	Log         *slog.Logger
	Metrics     *metrics.Metrics
}

func NewPredictPipeline(
	store ports.ArtifactStore,
	distance ports.DistanceProvider,
	log *slog.Logger,
	m *metrics.Metrics,
) *PredictPipeline {
	if log == nil {
		log = slog.Default()
	}
	return &PredictPipeline{
		Transformer: NewDataTransformation(store, log),
		Store:       store,
		Distance:    distance,
		Log:         log,
		Metrics:     m,
	}
}

// Predict returns one estimate per row of df.
func (p *PredictPipeline) Predict(ctx context.Context, df dataframe.DataFrame) (preds []float64, err error) {
	const op = "PredictPipeline.Predict"
	defer obs.Time(ctx, p.Log, op)(&err)

	start := time.Now()
	defer func() { p.observe(start, err) }()

	return p.predict(ctx, df)
}

// PredictRecord estimates a single trip, resolving its distance first when
// only coordinates were given.
func (p *PredictPipeline) PredictRecord(ctx context.Context, req PredictRequest) (pred float64, err error) {
	const op = "PredictPipeline.PredictRecord"
	defer obs.Time(ctx, p.Log, op)(&err)

	start := time.Now()
	defer func() { p.observe(start, err) }()

	rec := req.Record
	if req.Pickup != nil && req.Dropoff != nil && rec.DistanceInKM == 0 {
		km, err := p.resolveDistance(ctx, *req.Pickup, *req.Dropoff)
		if err != nil {
			return 0, err
		}
		rec.DistanceInKM = km
	}

	if err := rec.Validate(); err != nil {
		return 0, apperr.E(apperr.KindInput, op, err)
	}

	df, err := dataset.FromRecord(rec)
	if err != nil {
		return 0, apperr.E(apperr.KindInput, op, err)
	}

	preds, err := p.predict(ctx, df)
	if err != nil {
		return 0, err
	}
	return preds[0], nil
}

func (p *PredictPipeline) predict(ctx context.Context, df dataframe.DataFrame) ([]float64, error) {
	const op = "PredictPipeline.predict"

	features, err := p.Transformer.TransformFrame(ctx, df)
	if err != nil {
		return nil, err
	}

	model, err := p.loadModel(ctx)
	if err != nil {
		return nil, err
	}

	preds, err := model.Predict(features)
	if err != nil {
		p.Log.Error("prediction failed", "err", err)
		return nil, apperr.E(apperr.KindNumeric, op, err)
	}
	return preds, nil
}

// resolveDistance looks up the trip distance. Bad coordinates are the
// caller's fault; any provider failure is an upstream error whose details
// stay in the log.
func (p *PredictPipeline) resolveDistance(ctx context.Context, from, to domain.Coordinates) (float64, error) {
	const op = "PredictPipeline.resolveDistance"

	if p.Distance == nil {
		return 0, apperr.Errorf(apperr.KindInput, op, "%s is required", domain.ColDistance)
	}
	if err := from.Validate(); err != nil {
		return 0, apperr.Errorf(apperr.KindInput, op, "pickup: %w", err)
	}
	if err := to.Validate(); err != nil {
		return 0, apperr.Errorf(apperr.KindInput, op, "dropoff: %w", err)
	}

	r, err := p.Distance.GetDistance(ctx, from, to)
	if err != nil {
		p.Log.Error("distance lookup failed", "from", from.CoordsToList(), "to", to.CoordsToList(), "err", err)
		return 0, apperr.E(apperr.KindUpstream, op, err)
	}
	return r.KM(), nil
}

// Check loads and decodes every artifact a prediction needs and reports the
// failure per artifact name. An empty map means the pipeline is ready.
func (p *PredictPipeline) Check(ctx context.Context) map[string]error {
	problems := make(map[string]error)
	if _, err := p.Transformer.LoadPlan(ctx); err != nil {
		problems[PreprocessorArtifact] = err
	}
	if _, err := p.loadModel(ctx); err != nil {
		problems[ModelArtifact] = err
	}
	return problems
}

func (p *PredictPipeline) loadModel(ctx context.Context) (*regression.Linear, error) {
	const op = "PredictPipeline.loadModel"

	data, err := p.Store.Load(ctx, ModelArtifact)
	if err != nil {
		if errors.Is(err, ports.ErrArtifactNotFound) {
			err = fmt.Errorf("no trained model at %s: %w", p.Store.Location(ModelArtifact), err)
		}
		p.Log.Error("load model failed", "err", err)
		return nil, apperr.E(apperr.KindStorage, op, err)
	}

	m, err := regression.Decode(data)
	if err != nil {
		p.Log.Error("decode model failed", "err", err)
		return nil, apperr.E(apperr.KindStorage, op, err)
	}
	return m, nil
}

func (p *PredictPipeline) observe(start time.Time, err error) {
	if p.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	p.Metrics.Predictions.WithLabelValues(outcome).Inc()
	p.Metrics.PredictionDuration.Observe(time.Since(start).Seconds())
}
