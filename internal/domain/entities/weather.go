package entities

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SiteWeather is the current-conditions snapshot for a job site.
type SiteWeather struct {
	WeatherConditions string  `json:"weather_conditions"`
	Temperature       float64 `json:"temperature"`
	RoadConditions    string  `json:"road_conditions"`
}
