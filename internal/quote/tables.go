package quote

import "freight-ai-assistant/internal/domain/model"

// Rule tables for the quote engine. These are data, not control flow, so the
// classification and surcharge behavior stays testable on its own.

// routeBaseRates are the flat lane charges per route type.
var routeBaseRates = map[model.RouteType]float64{
	model.RouteDomestic:      100,
	model.RouteRegional:      250,
	model.RouteInternational: 600,
}

const (
	// Per started 10 weight units.
	weightUnitRate = 15
	// Per started 1000 of declared value.
	valueUnitRate = 5

	defaultWeight        = 50
	defaultDeclaredValue = 1000
)

// serviceLevel describes multiplier and transit range per level.
type serviceLevel struct {
	Multiplier     float64
	TransitDaysMin int
	TransitDaysMax int
}

var serviceLevels = map[string]serviceLevel{
	"express":  {Multiplier: 2.5, TransitDaysMin: 1, TransitDaysMax: 3},
	"standard": {Multiplier: 1.0, TransitDaysMin: 4, TransitDaysMax: 7},
	"economy":  {Multiplier: 0.75, TransitDaysMin: 8, TransitDaysMax: 14},
}

const defaultServiceLevel = "standard"

// surcharge is a flat amount plus an optional share of the declared value.
type surcharge struct {
	Keywords  []string
	Flat      float64
	ValueRate float64
}

var surcharges = []surcharge{
	{Keywords: []string{"insurance", "insured"}, ValueRate: 0.005},
	{Keywords: []string{"fragile", "glass", "breakable"}, Flat: 25},
	{Keywords: []string{"hazardous", "hazmat", "dangerous"}, Flat: 150},
	{Keywords: []string{"temperature", "refrigerated", "cold chain", "frozen"}, Flat: 75},
	{Keywords: []string{"customs", "clearance"}, Flat: 60},
	{Keywords: []string{"expedite", "urgent", "rush"}, Flat: 40},
}

// regionGroups map country keywords to a shared region. Same country ->
// domestic, same region -> regional, otherwise international.
var regionGroups = map[string]string{
	"india":          "south_asia",
	"pakistan":       "south_asia",
	"bangladesh":     "south_asia",
	"sri lanka":      "south_asia",
	"nepal":          "south_asia",
	"usa":            "north_america",
	"united states":  "north_america",
	"canada":         "north_america",
	"mexico":         "north_america",
	"uk":             "europe",
	"united kingdom": "europe",
	"germany":        "europe",
	"france":         "europe",
	"netherlands":    "europe",
	"spain":          "europe",
	"italy":          "europe",
	"china":          "east_asia",
	"japan":          "east_asia",
	"south korea":    "east_asia",
	"singapore":      "southeast_asia",
	"malaysia":       "southeast_asia",
	"thailand":       "southeast_asia",
	"vietnam":        "southeast_asia",
	"uae":            "middle_east",
	"saudi arabia":   "middle_east",
	"qatar":          "middle_east",
	"australia":      "oceania",
	"new zealand":    "oceania",
}

// carrier rows are ordered; the index drives the deterministic rate
// variation and the transit extension, so pre-sort ordering is stable for
// identical input.
type carrier struct {
	ID          string
	Name        string
	Reliability float64
	RateFactor  float64
}

var carriers = []carrier{
	{ID: "swiftline", Name: "SwiftLine Logistics", Reliability: 0.96, RateFactor: 1.00},
	{ID: "bluefreight", Name: "BlueFreight Express", Reliability: 0.92, RateFactor: 1.07},
	{ID: "cargonova", Name: "CargoNova Carriers", Reliability: 0.89, RateFactor: 1.15},
}
