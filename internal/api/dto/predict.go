package dto

import (
	"delivery-eta-service/internal/domain"
	"strconv"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p *Point) Coordinates() *domain.Coordinates {
	if p == nil {
		return nil
	}
	return &domain.Coordinates{Lon: p.Lon, Lat: p.Lat}
}

// PredictRequest mirrors the prediction form. Numeric fields are pointers so
// that an absent field can be told apart from zero. Distance may be left out
// when both pickup and dropoff are given.
type PredictRequest struct {
	DeliveryPersonAge     *float64 `json:"Delivery_person_Age"`
	DeliveryPersonRatings *float64 `json:"Delivery_person_Ratings"`
	WeatherConditions     string   `json:"Weather_conditions"`
	RoadTrafficDensity    string   `json:"Road_traffic_density"`
	VehicleCondition      *float64 `json:"Vehicle_condition"`
	TypeOfOrder           string   `json:"Type_of_order"`
	TypeOfVehicle         string   `json:"Type_of_vehicle"`
	MultipleDeliveries    *float64 `json:"multiple_deliveries"`
	Festival              string   `json:"Festival"`
	City                  string   `json:"City"`
	DistanceInKM          *float64 `json:"Distance_in_KM"`

	Pickup  *Point `json:"pickup,omitempty"`
	Dropoff *Point `json:"dropoff,omitempty"`
}

// Fields flattens the request into column name -> text, leaving out absent
// values, for domain.ParseRecord.
func (r PredictRequest) Fields() map[string]string {
	out := make(map[string]string, 11)

	num := func(col string, v *float64) {
		if v != nil {
			out[col] = strconv.FormatFloat(*v, 'g', -1, 64)
		}
	}
	str := func(col, v string) {
		if v != "" {
			out[col] = v
		}
	}

	num(domain.ColAge, r.DeliveryPersonAge)
	num(domain.ColRatings, r.DeliveryPersonRatings)
	num(domain.ColVehicleCondition, r.VehicleCondition)
	num(domain.ColMultipleDeliveries, r.MultipleDeliveries)
	num(domain.ColDistance, r.DistanceInKM)
	str(domain.ColWeather, r.WeatherConditions)
	str(domain.ColTraffic, r.RoadTrafficDensity)
	str(domain.ColOrderType, r.TypeOfOrder)
	str(domain.ColVehicleType, r.TypeOfVehicle)
	str(domain.ColFestival, r.Festival)
	str(domain.ColCity, r.City)
	return out
}

// HasRoute reports whether both endpoints were supplied.
func (r PredictRequest) HasRoute() bool { return r.Pickup != nil && r.Dropoff != nil }

type PredictResponse struct {
	PredictionMinutes float64 `json:"prediction_minutes"`
}
