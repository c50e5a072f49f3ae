package services

import (
	"context"
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/regression"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// ModelTrainer fits the regression model on a transformed train matrix whose
// last column is the target, scores it on the test matrix and persists it.
type ModelTrainer struct {
	Store ports.ArtifactStore
	Log   *slog.Logger
}

type TrainResult struct {
	Train    regression.Scores
	Test     regression.Scores
	Location string
}

func (t *ModelTrainer) Train(ctx context.Context, trainArr, testArr *mat.Dense) (res TrainResult, err error) {
	const op = "ModelTrainer.Train"
	log := t.Log
	if log == nil {
		log = slog.Default()
	}
	defer obs.Time(ctx, log, op)(&err)

	log.Info("Splitting dependent and independent variables from train and test data")

	xTrain, yTrain, err := splitXY(trainArr)
	if err != nil {
		return res, apperr.E(apperr.KindDataShape, op, err)
	}
	xTest, yTest, err := splitXY(testArr)
	if err != nil {
		return res, apperr.E(apperr.KindDataShape, op, err)
	}

	model, err := regression.Fit(xTrain, yTrain)
	if err != nil {
		log.Error("model fit failed", "err", err)
		return res, apperr.E(apperr.KindNumeric, op, err)
	}

	if res.Train, err = score(model, xTrain, yTrain); err != nil {
		return res, apperr.E(apperr.KindNumeric, op, err)
	}
	if res.Test, err = score(model, xTest, yTest); err != nil {
		return res, apperr.E(apperr.KindNumeric, op, err)
	}
	log.Info("model report",
		"train_r2", res.Train.R2,
		"test_r2", res.Test.R2,
		"test_mae", res.Test.MAE,
		"test_rmse", res.Test.RMSE,
	)

	data, err := model.Encode()
	if err != nil {
		return res, apperr.E(apperr.KindInternal, op, err)
	}
	if err := t.Store.Save(ctx, ModelArtifact, data); err != nil {
		log.Error("save model failed", "err", err)
		return res, apperr.E(apperr.KindStorage, op, err)
	}

	res.Location = t.Store.Location(ModelArtifact)
	return res, nil
}

func score(m *regression.Linear, x mat.Matrix, y []float64) (regression.Scores, error) {
	preds, err := m.Predict(x)
	if err != nil {
		return regression.Scores{}, err
	}
	return regression.Evaluate(y, preds)
}

func splitXY(arr *mat.Dense) (mat.Matrix, []float64, error) {
	if arr == nil {
		return nil, nil, errNoColumns
	}
	r, c := arr.Dims()
	if c < 2 {
		return nil, nil, errNoColumns
	}
	return arr.Slice(0, r, 0, c-1), mat.Col(nil, c-1, arr), nil
}
