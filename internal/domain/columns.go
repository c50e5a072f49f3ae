package domain

// Column names as they appear in the training data and the web form.
const (
	ColAge                = "Delivery_person_Age"
	ColRatings            = "Delivery_person_Ratings"
	ColVehicleCondition   = "Vehicle_condition"
	ColMultipleDeliveries = "multiple_deliveries"
	ColDistance           = "Distance_in_KM"

	ColWeather     = "Weather_conditions"
	ColTraffic     = "Road_traffic_density"
	ColOrderType   = "Type_of_order"
	ColVehicleType = "Type_of_vehicle"
	ColFestival    = "Festival"
	ColCity        = "City"

	ColTarget = "Time_taken (min)"
)

// Raw coordinate columns present in the source delivery dataset.
const (
	ColRestaurantLat = "Restaurant_latitude"
	ColRestaurantLon = "Restaurant_longitude"
	ColDeliveryLat   = "Delivery_location_latitude"
	ColDeliveryLon   = "Delivery_location_longitude"
)

// Vehicle_condition is fed through the numeric pipeline even though it is
// an ordinal signal in the source data.
func NumericColumns() []string {
	return []string{ColAge, ColRatings, ColVehicleCondition, ColMultipleDeliveries, ColDistance}
}

func CategoricalColumns() []string {
	return []string{ColWeather, ColTraffic, ColOrderType, ColVehicleType, ColFestival, ColCity}
}

// FeatureColumns returns numeric columns followed by categorical columns,
// which is also the column order of every feature matrix.
func FeatureColumns() []string {
	return append(NumericColumns(), CategoricalColumns()...)
}
