package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one delivery trip as entered on the prediction form.
type Record struct {
	DeliveryPersonAge     float64
	DeliveryPersonRatings float64
	WeatherConditions     Weather
	RoadTrafficDensity    TrafficDensity
	VehicleCondition      float64
	TypeOfOrder           OrderType
	TypeOfVehicle         VehicleType
	MultipleDeliveries    float64
	Festival              Festival
	City                  City
	DistanceInKM          float64
}

// MissingFieldError reports a required record field that was not supplied.
type MissingFieldError struct {
	Column string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %s", e.Column)
}

// Validate rejects non-finite numbers and out-of-range categories.
func (r Record) Validate() error {
	nums := r.numeric()
	for _, col := range NumericColumns() {
		v := nums[col]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("validate record: %s must be a finite number, got %v", col, v)
		}
	}

	switch {
	case !weatherEnum.valid(r.WeatherConditions):
		return fmt.Errorf("validate record: invalid %s", ColWeather)
	case !trafficEnum.valid(r.RoadTrafficDensity):
		return fmt.Errorf("validate record: invalid %s", ColTraffic)
	case !orderEnum.valid(r.TypeOfOrder):
		return fmt.Errorf("validate record: invalid %s", ColOrderType)
	case !vehicleEnum.valid(r.TypeOfVehicle):
		return fmt.Errorf("validate record: invalid %s", ColVehicleType)
	case !festivalEnum.valid(r.Festival):
		return fmt.Errorf("validate record: invalid %s", ColFestival)
	case !cityEnum.valid(r.City):
		return fmt.Errorf("validate record: invalid %s", ColCity)
	}

	return nil
}

func (r Record) numeric() map[string]float64 {
	return map[string]float64{
		ColAge:                r.DeliveryPersonAge,
		ColRatings:            r.DeliveryPersonRatings,
		ColVehicleCondition:   r.VehicleCondition,
		ColMultipleDeliveries: r.MultipleDeliveries,
		ColDistance:           r.DistanceInKM,
	}
}

// Fields renders the record as column name -> cell text, the shape of one
// CSV row. Floats are formatted so that they parse back bit-identically.
func (r Record) Fields() map[string]string {
	out := make(map[string]string, 11)
	for col, v := range r.numeric() {
		out[col] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	out[ColWeather] = r.WeatherConditions.String()
	out[ColTraffic] = r.RoadTrafficDensity.String()
	out[ColOrderType] = r.TypeOfOrder.String()
	out[ColVehicleType] = r.TypeOfVehicle.String()
	out[ColFestival] = r.Festival.String()
	out[ColCity] = r.City.String()
	return out
}

// ParseRecord builds a Record from raw text fields (e.g. a submitted form).
// Fields are checked in feature column order and the first problem is returned.
// Only Distance_in_KM may be omitted when allowNoDistance is set; the caller
// is then expected to fill it in.
func ParseRecord(fields map[string]string, allowNoDistance bool) (Record, error) {
	var r Record

	get := func(col string) (string, bool) {
		v, ok := fields[col]
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	num := func(col string, dst *float64) error {
		s, ok := get(col)
		if !ok {
			if col == ColDistance && allowNoDistance {
				return nil
			}
			return &MissingFieldError{Column: col}
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse record: %s: %q is not a number", col, s)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parse record: %s must be a finite number", col)
		}
		*dst = v
		return nil
	}

	cat := func(col string, parse func(string) error) error {
		s, ok := get(col)
		if !ok {
			return &MissingFieldError{Column: col}
		}
		return parse(s)
	}

	steps := []func() error{
		func() error { return num(ColAge, &r.DeliveryPersonAge) },
		func() error { return num(ColRatings, &r.DeliveryPersonRatings) },
		func() error { return num(ColVehicleCondition, &r.VehicleCondition) },
		func() error { return num(ColMultipleDeliveries, &r.MultipleDeliveries) },
		func() error { return num(ColDistance, &r.DistanceInKM) },
		func() error {
			return cat(ColWeather, func(s string) (err error) { r.WeatherConditions, err = ParseWeather(s); return })
		},
		func() error {
			return cat(ColTraffic, func(s string) (err error) { r.RoadTrafficDensity, err = ParseTrafficDensity(s); return })
		},
		func() error {
			return cat(ColOrderType, func(s string) (err error) { r.TypeOfOrder, err = ParseOrderType(s); return })
		},
		func() error {
			return cat(ColVehicleType, func(s string) (err error) { r.TypeOfVehicle, err = ParseVehicleType(s); return })
		},
		func() error {
			return cat(ColFestival, func(s string) (err error) { r.Festival, err = ParseFestival(s); return })
		},
		func() error {
			return cat(ColCity, func(s string) (err error) { r.City, err = ParseCity(s); return })
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return Record{}, err
		}
	}

	return r, nil
}

// IsMissingField reports whether err was caused by an absent field.
func IsMissingField(err error) bool {
	var mf *MissingFieldError
	return errors.As(err, &mf)
}
