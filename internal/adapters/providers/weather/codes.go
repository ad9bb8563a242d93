package weather

// weatherCodeDescriptions maps Tomorrow.io realtime weather codes to the
// human-readable descriptions shown on the meeting form.
var weatherCodeDescriptions = map[int]string{
	0:    "Unknown",
	1000: "Clear",
	1100: "Mostly Clear",
	1101: "Partly Cloudy",
	1102: "Mostly Cloudy",
	1001: "Cloudy",
	2000: "Fog",
	2100: "Light Fog",
	4000: "Drizzle",
	4001: "Rain",
	4200: "Light Rain",
	4201: "Heavy Rain",
	5000: "Snow",
	5001: "Flurries",
	5100: "Light Snow",
	5101: "Heavy Snow",
	6000: "Freezing Drizzle",
	6001: "Freezing Rain",
	6200: "Light Freezing Rain",
	6201: "Heavy Freezing Rain",
	7000: "Ice Pellets",
	7101: "Heavy Ice Pellets",
	7102: "Light Ice Pellets",
	8000: "Thunderstorm",
}

var icyCodes = map[int]bool{
	5000: true, 5001: true, 5100: true, 5101: true,
	6000: true, 6001: true, 6200: true, 6201: true,
	7000: true, 7101: true, 7102: true,
}

var wetCodes = map[int]bool{
	4000: true, 4001: true, 4200: true, 4201: true, 8000: true,
}

var fogCodes = map[int]bool{
	2000: true, 2100: true,
}

// DescribeWeatherCode returns the description for a Tomorrow.io weather code,
// or "Unknown" for codes outside the table.
func DescribeWeatherCode(code int) string {
	if desc, ok := weatherCodeDescriptions[code]; ok {
		return desc
	}
	return "Unknown"
}

// DeriveRoadConditions infers site road conditions from the current weather
// code and precipitation probability.
func DeriveRoadConditions(code int, precipProbability float64) string {
	switch {
	case icyCodes[code]:
		return "Icy or Snow Covered"
	case wetCodes[code]:
		if precipProbability > 50 {
			return "Wet and Slippery"
		}
		return "Potentially Wet"
	case fogCodes[code]:
		return "Reduced Visibility"
	default:
		return "Dry"
	}
}
