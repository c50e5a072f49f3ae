package domain

import (
	"errors"
	"testing"
)

func TestVocabulariesOrder(t *testing.T) {
	vocabs := Vocabularies()
	cols := CategoricalColumns()

	if len(vocabs) != len(cols) {
		t.Fatalf("got %d vocabularies, want %d", len(vocabs), len(cols))
	}
	for i, v := range vocabs {
		if v.Column != cols[i] {
			t.Fatalf("vocabulary %d column = %q, want %q", i, v.Column, cols[i])
		}
	}

	weather := vocabs[0].Values
	if weather[0] != "Fog" || weather[5] != "Sunny" {
		t.Fatalf("weather vocabulary = %v", weather)
	}
}

func TestVocabulariesReturnsCopies(t *testing.T) {
	v := Vocabularies()
	v[0].Values[0] = "Hail"

	if got := Vocabularies()[0].Values[0]; got != "Fog" {
		t.Fatalf("vocabulary mutated through returned slice: got %q", got)
	}
}

func TestParseWeatherRanks(t *testing.T) {
	cases := map[string]Weather{
		"Fog":        0,
		"Stormy":     1,
		"Sandstorms": 2,
		"Windy":      3,
		"Cloudy":     4,
		"Sunny":      5,
	}
	for s, want := range cases {
		got, err := ParseWeather(s)
		if err != nil {
			t.Fatalf("ParseWeather(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseWeather(%q) = %d, want %d", s, got, want)
		}
		if got.String() != s {
			t.Errorf("String() = %q, want %q", got.String(), s)
		}
	}
}

func TestParseUnknownCategory(t *testing.T) {
	_, err := ParseWeather("Tornado")

	var uc *UnknownCategoryError
	if !errors.As(err, &uc) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
	if uc.Column != ColWeather || uc.Value != "Tornado" {
		t.Fatalf("unexpected error fields: %+v", uc)
	}
}

func TestParseIsCaseSensitive(t *testing.T) {
	if _, err := ParseVehicleType("Motorcycle"); err == nil {
		t.Fatal("expected error for wrong case")
	}
	if v, err := ParseVehicleType("electric_scooter"); err != nil || v != VehicleElectricScooter {
		t.Fatalf("ParseVehicleType = %v, %v", v, err)
	}
}

func TestOutOfRangeString(t *testing.T) {
	if got := City(7).String(); got != "City(7)" {
		t.Fatalf("String() = %q, want City(7)", got)
	}
}
