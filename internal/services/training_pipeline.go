package services

import (
	"context"
	"delivery-eta-service/internal/ports"
	"errors"
	"log/slog"
)

var errNoColumns = errors.New("matrix needs feature columns and a target column")

// TrainingPipeline runs ingestion, data transformation and model training
// in sequence.
type TrainingPipeline struct {
	Ingestion *Ingestion
	Store     ports.ArtifactStore
	Log       *slog.Logger
}

type TrainingReport struct {
	Ingestion      IngestionResult
	PreprocessorAt string
	Model          TrainResult
}

func (p *TrainingPipeline) Run(ctx context.Context) (TrainingReport, error) {
	var rep TrainingReport

	ing, err := p.Ingestion.Run(ctx)
	if err != nil {
		return rep, err
	}
	rep.Ingestion = ing

	dt := NewDataTransformation(p.Store, p.Log)
	trainArr, testArr, loc, err := dt.TransformFiles(ctx, ing.TrainPath, ing.TestPath)
	if err != nil {
		return rep, err
	}
	rep.PreprocessorAt = loc

	trainer := &ModelTrainer{Store: p.Store, Log: p.Log}
	if rep.Model, err = trainer.Train(ctx, trainArr, testArr); err != nil {
		return rep, err
	}
	return rep, nil
}
