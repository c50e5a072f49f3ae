package domain

import (
	"fmt"
	"slices"
)

// Vocabulary is the fixed, ordered category list of one categorical column.
// A value's position is its ordinal rank.
type Vocabulary struct {
	Column string
	Values []string
}

// UnknownCategoryError reports a value that is not part of a column's vocabulary.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for column %s", e.Value, e.Column)
}

type enum[T ~int] struct {
	column string
	names  []string
}

func (e enum[T]) name(v T) string {
	if int(v) < 0 || int(v) >= len(e.names) {
		return fmt.Sprintf("%s(%d)", e.column, int(v))
	}
	return e.names[v]
}

func (e enum[T]) parse(s string) (T, error) {
	for i, n := range e.names {
		if n == s {
			return T(i), nil
		}
	}
	return 0, &UnknownCategoryError{Column: e.column, Value: s}
}

func (e enum[T]) valid(v T) bool { return int(v) >= 0 && int(v) < len(e.names) }

func (e enum[T]) vocabulary() Vocabulary {
	return Vocabulary{Column: e.column, Values: slices.Clone(e.names)}
}

type Weather int

const (
	WeatherFog Weather = iota
	WeatherStormy
	WeatherSandstorms
	WeatherWindy
	WeatherCloudy
	WeatherSunny
)

var weatherEnum = enum[Weather]{ColWeather, []string{"Fog", "Stormy", "Sandstorms", "Windy", "Cloudy", "Sunny"}}

func (w Weather) String() string { return weatherEnum.name(w) }

func ParseWeather(s string) (Weather, error) { return weatherEnum.parse(s) }

type TrafficDensity int

const (
	TrafficJam TrafficDensity = iota
	TrafficHigh
	TrafficMedium
	TrafficLow
)

var trafficEnum = enum[TrafficDensity]{ColTraffic, []string{"Jam", "High", "Medium", "Low"}}

func (t TrafficDensity) String() string { return trafficEnum.name(t) }

func ParseTrafficDensity(s string) (TrafficDensity, error) { return trafficEnum.parse(s) }

type OrderType int

const (
	OrderSnack OrderType = iota
	OrderMeal
	OrderDrinks
	OrderBuffet
)

var orderEnum = enum[OrderType]{ColOrderType, []string{"Snack", "Meal", "Drinks", "Buffet"}}

func (o OrderType) String() string { return orderEnum.name(o) }

func ParseOrderType(s string) (OrderType, error) { return orderEnum.parse(s) }

type VehicleType int

const (
	VehicleMotorcycle VehicleType = iota
	VehicleScooter
	VehicleElectricScooter
	VehicleBicycle
)

var vehicleEnum = enum[VehicleType]{ColVehicleType, []string{"motorcycle", "scooter", "electric_scooter", "bicycle"}}

func (v VehicleType) String() string { return vehicleEnum.name(v) }

func ParseVehicleType(s string) (VehicleType, error) { return vehicleEnum.parse(s) }

type Festival int

const (
	FestivalNo Festival = iota
	FestivalYes
)

var festivalEnum = enum[Festival]{ColFestival, []string{"No", "Yes"}}

func (f Festival) String() string { return festivalEnum.name(f) }

func ParseFestival(s string) (Festival, error) { return festivalEnum.parse(s) }

type City int

const (
	CityMetropolitian City = iota
	CityUrban
	CitySemiUrban
)

// "Metropolitian" matches the spelling used in the source data.
var cityEnum = enum[City]{ColCity, []string{"Metropolitian", "Urban", "Semi-Urban"}}

func (c City) String() string { return cityEnum.name(c) }

func ParseCity(s string) (City, error) { return cityEnum.parse(s) }

// Vocabularies returns the categorical vocabularies in categorical column order.
func Vocabularies() []Vocabulary {
	return []Vocabulary{
		weatherEnum.vocabulary(),
		trafficEnum.vocabulary(),
		orderEnum.vocabulary(),
		vehicleEnum.vocabulary(),
		festivalEnum.vocabulary(),
		cityEnum.vocabulary(),
	}
}
