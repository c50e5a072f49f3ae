package services

import (
	"context"
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/dataset"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/obs"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Ingestion reads the raw delivery table, prepares it and writes the raw,
// train and test CSV tables into Dir.
type Ingestion struct {
	RawPath   string
	Dir       string
	TestRatio float64
	Seed      int64
	Log       *slog.Logger
}

type IngestionResult struct {
	RawPath   string
	TrainPath string
	TestPath  string
	TrainRows int
	TestRows  int
}

func (in *Ingestion) Run(ctx context.Context) (res IngestionResult, err error) {
	const op = "Ingestion.Run"
	log := in.Log
	if log == nil {
		log = slog.Default()
	}
	defer obs.Time(ctx, log, op)(&err)

	log.Info("Data Ingestion started", "path", in.RawPath)

	raw, err := dataset.ReadCSVFile(in.RawPath)
	if err != nil {
		log.Error("read raw data failed", "err", err)
		return res, apperr.E(apperr.KindDataShape, op, err)
	}

	df, err := Prepare(raw)
	if err != nil {
		log.Error("prepare raw data failed", "err", err)
		return res, apperr.E(apperr.KindDataShape, op, err)
	}

	train, test, err := Split(df, in.TestRatio, in.Seed)
	if err != nil {
		log.Error("train test split failed", "err", err)
		return res, apperr.E(apperr.KindDataShape, op, err)
	}

	res = IngestionResult{
		RawPath:   filepath.Join(in.Dir, "raw.csv"),
		TrainPath: filepath.Join(in.Dir, "train.csv"),
		TestPath:  filepath.Join(in.Dir, "test.csv"),
		TrainRows: train.Nrow(),
		TestRows:  test.Nrow(),
	}
	for _, w := range []struct {
		path string
		df   dataframe.DataFrame
	}{{res.RawPath, df}, {res.TrainPath, train}, {res.TestPath, test}} {
		if err := dataset.WriteCSVFile(w.path, w.df); err != nil {
			log.Error("write table failed", "path", w.path, "err", err)
			return IngestionResult{}, apperr.E(apperr.KindStorage, op, err)
		}
	}

	log.Info("Ingestion of Data is completed", "train_rows", res.TrainRows, "test_rows", res.TestRows)
	return res, nil
}

// Prepare derives Distance_in_KM from the restaurant and delivery
// coordinates when the column is absent, keeps only the feature and target
// columns and drops rows without a target.
func Prepare(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !hasColumn(df, domain.ColDistance) {
		dist, err := distanceColumn(df)
		if err != nil {
			return df, err
		}
		df = df.Mutate(dist)
		if df.Err != nil {
			return df, fmt.Errorf("add %s: %w", domain.ColDistance, df.Err)
		}
	}

	keep := append(domain.FeatureColumns(), domain.ColTarget)
	if err := requireColumns(df, keep); err != nil {
		return df, err
	}
	df = df.Select(keep)

	y := df.Col(domain.ColTarget).Float()
	rows := make([]int, 0, len(y))
	for i, v := range y {
		if !math.IsNaN(v) {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return df, fmt.Errorf("no rows with a %s value", domain.ColTarget)
	}
	if len(rows) < len(y) {
		df = df.Subset(rows)
	}
	if df.Err != nil {
		return df, df.Err
	}
	return df, nil
}

// distanceColumn computes great-circle distances row by row. Rows with
// missing or invalid coordinates get NaN and are imputed later.
func distanceColumn(df dataframe.DataFrame) (series.Series, error) {
	coords := []string{domain.ColRestaurantLat, domain.ColRestaurantLon, domain.ColDeliveryLat, domain.ColDeliveryLon}
	if err := requireColumns(df, coords); err != nil {
		return series.Series{}, fmt.Errorf("derive %s: %w", domain.ColDistance, err)
	}

	rLat := df.Col(domain.ColRestaurantLat).Float()
	rLon := df.Col(domain.ColRestaurantLon).Float()
	dLat := df.Col(domain.ColDeliveryLat).Float()
	dLon := df.Col(domain.ColDeliveryLon).Float()

	km := make([]float64, df.Nrow())
	for i := range km {
		from := domain.Coordinates{Lon: rLon[i], Lat: rLat[i]}
		to := domain.Coordinates{Lon: dLon[i], Lat: dLat[i]}
		if from.Validate() != nil || to.Validate() != nil {
			km[i] = math.NaN()
			continue
		}
		km[i] = math.Round(from.HaversineKM(to)*100) / 100
	}
	return series.New(km, series.Float, domain.ColDistance), nil
}

// Split shuffles rows with a seeded source and puts ceil(ratio*n) of them in
// the test table. The same seed always yields the same split.
func Split(df dataframe.DataFrame, ratio float64, seed int64) (train, test dataframe.DataFrame, err error) {
	n := df.Nrow()
	if ratio <= 0 || ratio >= 1 {
		return train, test, fmt.Errorf("test ratio %v must be in (0, 1)", ratio)
	}

	nTest := int(math.Ceil(ratio * float64(n)))
	if nTest < 1 || nTest >= n {
		return train, test, fmt.Errorf("cannot split %d rows with test ratio %v", n, ratio)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = df.Subset(perm[:nTest])
	train = df.Subset(perm[nTest:])
	if train.Err != nil {
		return train, test, train.Err
	}
	if test.Err != nil {
		return train, test, test.Err
	}
	return train, test, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
