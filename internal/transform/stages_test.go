package transform

import (
	"math"
	"testing"
)

func TestMedianImputer(t *testing.T) {
	var m MedianImputer
	if err := m.Fit([]float64{3, math.NaN(), 1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Statistic != 2 {
		t.Fatalf("median = %v, want 2", m.Statistic)
	}

	if err := m.Fit([]float64{4, 1, 3, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Statistic != 2.5 {
		t.Fatalf("median = %v, want 2.5", m.Statistic)
	}

	got := m.Transform([]float64{math.NaN(), 7})
	if got[0] != 2.5 || got[1] != 7 {
		t.Fatalf("transform = %v, want [2.5 7]", got)
	}

	if err := m.Fit([]float64{math.NaN()}); err == nil {
		t.Fatal("expected error for all-missing column")
	}
}

func TestMostFrequentImputerTieBreak(t *testing.T) {
	var m MostFrequentImputer
	col := []string{"Urban", "Metropolitian", "", "Urban", "Metropolitian"}
	missing := []bool{false, false, true, false, false}

	if err := m.Fit(col, missing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Statistic != "Metropolitian" {
		t.Fatalf("mode = %q, want Metropolitian", m.Statistic)
	}

	got := m.Transform(col, missing)
	if got[2] != "Metropolitian" || got[0] != "Urban" {
		t.Fatalf("transform = %v", got)
	}

	if err := m.Fit([]string{""}, []bool{true}); err == nil {
		t.Fatal("expected error for all-missing column")
	}
}

func TestStandardScaler(t *testing.T) {
	var s StandardScaler
	if err := s.Fit([]float64{1, 2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Mean != 2.5 {
		t.Fatalf("mean = %v, want 2.5", s.Mean)
	}
	if want := math.Sqrt(1.25); math.Abs(s.Scale-want) > 1e-15 {
		t.Fatalf("scale = %v, want %v", s.Scale, want)
	}

	got := s.Transform([]float64{2.5})
	if got[0] != 0 {
		t.Fatalf("transform(mean) = %v, want 0", got[0])
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	var s StandardScaler
	if err := s.Fit([]float64{0.1, 0.1, 0.1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Scale != 1 {
		t.Fatalf("scale = %v, want 1", s.Scale)
	}
}
