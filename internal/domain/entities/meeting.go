package entities

import (
	"strings"
	"time"
)

// Meeting represents a persisted toolbox meeting record. The submitted form
// fields and the server-side enrichment fields live on the same record, the
// enrichment fields are filled in during creation.
type Meeting struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	JobTitle       string `json:"job_title" db:"job_title"`
	JobDescription string `json:"job_description" db:"job_description"`
	Company        string `json:"company" db:"company"`
	SiteAddress    string `json:"site_address" db:"site_address"`
	Date           string `json:"date" db:"date"`
	Time           string `json:"time" db:"time"`

	SupervisorName      string `json:"supervisor_name" db:"supervisor_name"`
	SupervisorPhone     string `json:"supervisor_phone" db:"supervisor_phone"`
	EmergencySiteNumber string `json:"emergency_site_number" db:"emergency_site_number"`

	WeatherConditions string  `json:"weather_conditions" db:"weather_conditions"`
	Temperature       float64 `json:"temperature" db:"temperature"`
	RoadConditions    string  `json:"road_conditions" db:"road_conditions"`
	LeaseConditions   string  `json:"lease_conditions" db:"lease_conditions"`

	Hazards            HazardFlags `json:"hazards" db:"hazards"`
	AdditionalComments string      `json:"additional_comments" db:"additional_comments"`

	AISafetySummary         string         `json:"ai_safety_summary" db:"ai_safety_summary"`
	SafetyStandards         string         `json:"safety_standards" db:"safety_standards"`
	SafetyStandardsSources  []SafetySource `json:"safety_standards_sources" db:"safety_standards_sources"`
	SafetyStandardsMetadata SafetyMetadata `json:"safety_standards_metadata" db:"safety_standards_metadata"`
}

// HazardFlags is the fixed 13-key hazard classification for a job. The set of
// keys never changes; unknown keys from the classifier are dropped during
// normalization.
type HazardFlags struct {
	ConfinedSpace    bool `json:"confined_space"`
	Driving          bool `json:"driving"`
	ElectricalWork   bool `json:"electrical_work"`
	HandPowerTools   bool `json:"hand_power_tools"`
	HeatCold         bool `json:"heat_cold"`
	HeavyLifting     bool `json:"heavy_lifting"`
	MobileEquipment  bool `json:"mobile_equipment"`
	OpenExcavation   bool `json:"open_excavation"`
	OtherTrades      bool `json:"other_trades"`
	PPE              bool `json:"ppe"`
	PinchPoints      bool `json:"pinch_points"`
	SlipsTripsFalls  bool `json:"slips_trips_falls"`
	WorkingAtHeights bool `json:"working_at_heights"`
}

// HazardKeys lists the 13 known hazard keys in canonical order.
var HazardKeys = []string{
	"confined_space",
	"driving",
	"electrical_work",
	"hand_power_tools",
	"heat_cold",
	"heavy_lifting",
	"mobile_equipment",
	"open_excavation",
	"other_trades",
	"ppe",
	"pinch_points",
	"slips_trips_falls",
	"working_at_heights",
}

// ToMap returns the flags keyed by their canonical names.
func (h HazardFlags) ToMap() map[string]bool {
	return map[string]bool{
		"confined_space":     h.ConfinedSpace,
		"driving":            h.Driving,
		"electrical_work":    h.ElectricalWork,
		"hand_power_tools":   h.HandPowerTools,
		"heat_cold":          h.HeatCold,
		"heavy_lifting":      h.HeavyLifting,
		"mobile_equipment":   h.MobileEquipment,
		"open_excavation":    h.OpenExcavation,
		"other_trades":       h.OtherTrades,
		"ppe":                h.PPE,
		"pinch_points":       h.PinchPoints,
		"slips_trips_falls":  h.SlipsTripsFalls,
		"working_at_heights": h.WorkingAtHeights,
	}
}

// HazardFlagsFromMap normalizes an arbitrary key/bool map into the fixed flag
// set. Unknown keys are dropped and missing keys default to false.
func HazardFlagsFromMap(m map[string]bool) HazardFlags {
	return HazardFlags{
		ConfinedSpace:    m["confined_space"],
		Driving:          m["driving"],
		ElectricalWork:   m["electrical_work"],
		HandPowerTools:   m["hand_power_tools"],
		HeatCold:         m["heat_cold"],
		HeavyLifting:     m["heavy_lifting"],
		MobileEquipment:  m["mobile_equipment"],
		OpenExcavation:   m["open_excavation"],
		OtherTrades:      m["other_trades"],
		PPE:              m["ppe"],
		PinchPoints:      m["pinch_points"],
		SlipsTripsFalls:  m["slips_trips_falls"],
		WorkingAtHeights: m["working_at_heights"],
	}
}

// ActiveNames returns the display names (underscores replaced with spaces) of
// all flags currently set, in canonical order.
func (h HazardFlags) ActiveNames() []string {
	flags := h.ToMap()
	var names []string
	for _, key := range HazardKeys {
		if flags[key] {
			names = append(names, strings.ReplaceAll(key, "_", " "))
		}
	}
	return names
}
