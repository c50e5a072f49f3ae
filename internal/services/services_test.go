package services

import (
	"context"
	"delivery-eta-service/internal/apperr"
	"delivery-eta-service/internal/adapters/artifacts"
	"delivery-eta-service/internal/dataset"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logging"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
)

var tableHeader = append(domain.FeatureColumns(), domain.ColTarget)

// Columns: age, ratings, vehicle condition, multiple deliveries, distance,
// weather, traffic, order, vehicle, festival, city, time taken.
var trainRows = [][]string{
	{"22", "4.5", "1", "1", "5.2", "Sunny", "Low", "Snack", "motorcycle", "No", "Urban", "21"},
	{"25", "4.8", "2", "0", "3.1", "Fog", "Jam", "Meal", "scooter", "Yes", "Metropolitian", "33"},
	{"28", "4.2", "0", "2", "10.0", "Fog", "High", "Drinks", "motorcycle", "No", "Semi-Urban", "40"},
	{"30", "", "1", "1", "7.7", "", "Medium", "Buffet", "bicycle", "No", "Urban", "29"},
	{"33", "4.9", "2", "1", "2.4", "Cloudy", "Low", "Snack", "scooter", "No", "Urban", "18"},
	{"35", "4.6", "0", "3", "12.3", "Stormy", "Jam", "Meal", "motorcycle", "Yes", "Metropolitian", "49"},
	{"38", "4.1", "1", "0", "6.6", "Windy", "High", "Drinks", "electric_scooter", "No", "Urban", "30"},
	{"40", "4.7", "2", "1", "4.0", "Sandstorms", "Medium", "Buffet", "scooter", "No", "Semi-Urban", "26"},
}

var testRows = [][]string{
	{"", "4.4", "1", "1", "8.1", "Sunny", "Jam", "Meal", "motorcycle", "No", "Urban", "35"},
	{"", "4.9", "2", "0", "1.9", "Fog", "Low", "Snack", "scooter", "No", "Metropolitian", "17"},
}

func table(t *testing.T, header []string, rows [][]string) dataframe.DataFrame {
	t.Helper()
	df, err := dataset.FromRows(header, rows)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return df
}

func exampleRecord() domain.Record {
	return domain.Record{
		DeliveryPersonAge:     36,
		DeliveryPersonRatings: 4.2,
		WeatherConditions:     domain.WeatherFog,
		RoadTrafficDensity:    domain.TrafficJam,
		VehicleCondition:      2,
		TypeOfOrder:           domain.OrderSnack,
		TypeOfVehicle:         domain.VehicleMotorcycle,
		MultipleDeliveries:    3,
		Festival:              domain.FestivalNo,
		City:                  domain.CityMetropolitian,
		DistanceInKM:          12.3,
	}
}

func newTransformation(t *testing.T) (*DataTransformation, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "artifacts")
	return NewDataTransformation(artifacts.NewFileArtifactStore(dir), logging.Discard()), dir
}

func fitted(t *testing.T) *DataTransformation {
	t.Helper()
	dt, _ := newTransformation(t)
	if _, _, _, err := dt.FitAndTransform(context.Background(), table(t, tableHeader, trainRows), table(t, tableHeader, testRows)); err != nil {
		t.Fatalf("FitAndTransform: %v", err)
	}
	return dt
}

func TestFitAndTransformEndToEnd(t *testing.T) {
	dt, dir := newTransformation(t)

	trainArr, testArr, loc, err := dt.FitAndTransform(context.Background(), table(t, tableHeader, trainRows), table(t, tableHeader, testRows))
	if err != nil {
		t.Fatalf("FitAndTransform: %v", err)
	}

	if r, c := trainArr.Dims(); r != len(trainRows) || c != 12 {
		t.Fatalf("train dims = %dx%d, want %dx12", r, c, len(trainRows))
	}
	if r, c := testArr.Dims(); r != len(testRows) || c != 12 {
		t.Fatalf("test dims = %dx%d, want %dx12", r, c, len(testRows))
	}

	// Target is appended untransformed.
	if got := trainArr.At(1, 11); got != 33 {
		t.Fatalf("train target = %v, want 33", got)
	}
	if got := testArr.At(0, 11); got != 35 {
		t.Fatalf("test target = %v, want 35", got)
	}

	if want := filepath.Join(dir, PreprocessorArtifact); loc != want {
		t.Fatalf("location = %q, want %q", loc, want)
	}
	if _, err := os.Stat(loc); err != nil {
		t.Fatalf("preprocessor not persisted: %v", err)
	}
}

func TestFitAndTransformMissingTarget(t *testing.T) {
	dt, _ := newTransformation(t)

	noTarget := make([][]string, len(trainRows))
	for i, r := range trainRows {
		noTarget[i] = r[:11]
	}

	_, _, _, err := dt.FitAndTransform(context.Background(), table(t, domain.FeatureColumns(), noTarget), table(t, tableHeader, testRows))
	if !apperr.Is(err, apperr.KindDataShape) {
		t.Fatalf("expected data shape error, got %v", err)
	}
	if !strings.Contains(err.Error(), domain.ColTarget) {
		t.Fatalf("error %q should name the target column", err)
	}
}

func TestFitAndTransformMissingFeature(t *testing.T) {
	dt, _ := newTransformation(t)

	test := table(t, tableHeader, testRows).Drop(domain.ColCity)
	_, _, _, err := dt.FitAndTransform(context.Background(), table(t, tableHeader, trainRows), test)
	if !apperr.Is(err, apperr.KindDataShape) {
		t.Fatalf("expected data shape error, got %v", err)
	}
}

func TestTestSetUsesTrainMedian(t *testing.T) {
	dt, _ := newTransformation(t)

	_, testArr, _, err := dt.FitAndTransform(context.Background(), table(t, tableHeader, trainRows), table(t, tableHeader, testRows))
	if err != nil {
		t.Fatalf("FitAndTransform: %v", err)
	}

	// Median of the train ages is 31.5; both test ages are missing.
	rec := exampleRecord()
	rec.DeliveryPersonAge = 31.5
	vec, err := dt.Apply(context.Background(), rec)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i := range testRows {
		if got := testArr.At(i, 0); math.Abs(got-vec[0]) > 1e-12 {
			t.Fatalf("test row %d age = %v, want %v", i, got, vec[0])
		}
	}
}

func TestApplyExampleRecord(t *testing.T) {
	dt := fitted(t)

	vec, err := dt.Apply(context.Background(), exampleRecord())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(vec) != 11 {
		t.Fatalf("len = %d, want 11", len(vec))
	}
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("value %d is not finite: %v", i, v)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	dt := fitted(t)
	ctx := context.Background()

	first, err := dt.Apply(ctx, exampleRecord())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second, err := dt.Apply(ctx, exampleRecord())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("value %d changed between calls: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestApplyWithoutPersistedPlan(t *testing.T) {
	dt, _ := newTransformation(t)

	if _, err := dt.Apply(context.Background(), exampleRecord()); !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestApplyInvalidRecord(t *testing.T) {
	dt := fitted(t)

	rec := exampleRecord()
	rec.WeatherConditions = domain.Weather(42)
	if _, err := dt.Apply(context.Background(), rec); !apperr.Is(err, apperr.KindInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestTransformFrameUnknownCategory(t *testing.T) {
	dt := fitted(t)

	row := append([]string(nil), trainRows[0][:11]...)
	row[5] = "Tornado"

	_, err := dt.TransformFrame(context.Background(), table(t, domain.FeatureColumns(), [][]string{row}))
	if !apperr.Is(err, apperr.KindInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Tornado") {
		t.Fatalf("error %q should name the unseen value", err)
	}
}

func TestBuildPlanBadSchema(t *testing.T) {
	dt, _ := newTransformation(t)
	dt.Schema.Numeric = append(dt.Schema.Numeric, domain.ColAge)

	if _, err := dt.BuildPlan(); !apperr.Is(err, apperr.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestTransformFiles(t *testing.T) {
	dt, _ := newTransformation(t)
	dir := t.TempDir()

	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	if err := dataset.WriteCSVFile(trainPath, table(t, tableHeader, trainRows)); err != nil {
		t.Fatalf("write train: %v", err)
	}
	if err := dataset.WriteCSVFile(testPath, table(t, tableHeader, testRows)); err != nil {
		t.Fatalf("write test: %v", err)
	}

	trainArr, _, _, err := dt.TransformFiles(context.Background(), trainPath, testPath)
	if err != nil {
		t.Fatalf("TransformFiles: %v", err)
	}
	if r, c := trainArr.Dims(); r != len(trainRows) || c != 12 {
		t.Fatalf("dims = %dx%d", r, c)
	}

	if _, _, _, err := dt.TransformFiles(context.Background(), filepath.Join(dir, "nope.csv"), testPath); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// writeRawCSV writes n synthetic raw rows with coordinates but no distance.
func writeRawCSV(t *testing.T, n int) string {
	t.Helper()

	weathers := []string{"Fog", "Stormy", "Sandstorms", "Windy", "Cloudy", "Sunny"}
	traffic := []string{"Jam", "High", "Medium", "Low"}
	orders := []string{"Snack", "Meal", "Drinks", "Buffet"}
	vehicles := []string{"motorcycle", "scooter", "electric_scooter", "bicycle"}
	cities := []string{"Metropolitian", "Urban", "Semi-Urban"}

	var b strings.Builder
	b.WriteString("ID,Delivery_person_Age,Delivery_person_Ratings,Restaurant_latitude,Restaurant_longitude," +
		"Delivery_location_latitude,Delivery_location_longitude,Weather_conditions,Road_traffic_density," +
		"Vehicle_condition,Type_of_order,Type_of_vehicle,multiple_deliveries,Festival,City,Time_taken (min)\n")
	for i := 0; i < n; i++ {
		festival := "No"
		if i%5 == 0 {
			festival = "Yes"
		}
		target := "NaN"
		if i != n-1 {
			target = fmt.Sprintf("%d", 15+i+3*(i%4))
		}
		fmt.Fprintf(&b, "0x%04x,%d,%.1f,%.4f,77.5946,%.4f,%.4f,%s,%s,%d,%s,%s,%d,%s,%s,%s\n",
			i, 20+i, 4.0+float64(i%10)/10,
			12.9+0.01*float64(i), 12.95+0.01*float64(i), 77.60+0.004*float64(i),
			weathers[i%6], traffic[i%4], i%3, orders[(i/2)%4], vehicles[(i/3)%4], (i/5)%4,
			festival, cities[i%3], target)
	}

	path := filepath.Join(t.TempDir(), "finalTrain.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write raw csv: %v", err)
	}
	return path
}
