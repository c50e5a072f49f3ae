// Package dataset loads and writes delivery tables as gota data frames.
package dataset

import (
	"delivery-eta-service/internal/domain"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Cells that count as missing when loading tables.
var missingValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// ColumnTypes pins the type of every known column so that a categorical
// column is never inferred as numeric (or the other way round).
func ColumnTypes() map[string]series.Type {
	types := map[string]series.Type{
		domain.ColTarget:        series.Float,
		domain.ColRestaurantLat: series.Float,
		domain.ColRestaurantLon: series.Float,
		domain.ColDeliveryLat:   series.Float,
		domain.ColDeliveryLon:   series.Float,
	}
	for _, c := range domain.NumericColumns() {
		types[c] = series.Float
	}
	for _, c := range domain.CategoricalColumns() {
		types[c] = series.String
	}
	return types
}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.WithTypes(ColumnTypes()),
		dataframe.NaNValues(missingValues),
	}
}

// ReadCSV parses a headered CSV table.
func ReadCSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

// ReadCSVFile opens path, parses it and closes it.
func ReadCSVFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read table %q: %w", path, err)
	}
	defer f.Close()

	df, err := ReadCSV(f)
	if err != nil {
		return df, fmt.Errorf("read table %q: %w", path, err)
	}
	return df, nil
}

// WriteCSVFile writes df with a header row, creating parent directories.
func WriteCSVFile(path string, df dataframe.DataFrame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write table %q: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write table %q: %w", path, err)
	}

	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write table %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write table %q: close: %w", path, err)
	}
	return nil
}

// FromRows builds a frame from a header and string rows.
func FromRows(header []string, rows [][]string) (dataframe.DataFrame, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for i, r := range rows {
		if len(r) != len(header) {
			return dataframe.DataFrame{}, fmt.Errorf("row %d has %d cells, header has %d", i, len(r), len(header))
		}
		records = append(records, r)
	}

	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("load rows: %w", df.Err)
	}
	return df, nil
}

// FromRecord wraps a single trip into a one-row frame holding the eleven
// feature columns.
func FromRecord(r domain.Record) (dataframe.DataFrame, error) {
	fields := r.Fields()
	header := domain.FeatureColumns()
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = fields[col]
	}
	return FromRows(header, [][]string{row})
}

// SplitTarget separates the target column from the feature columns.
func SplitTarget(df dataframe.DataFrame, target string) (dataframe.DataFrame, []float64, error) {
	found := false
	for _, n := range df.Names() {
		if n == target {
			found = true
			break
		}
	}
	if !found {
		return dataframe.DataFrame{}, nil, fmt.Errorf("missing target column %q", target)
	}

	y := df.Col(target).Float()
	features := df.Drop(target)
	if features.Err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("drop target column: %w", features.Err)
	}
	return features, y, nil
}
