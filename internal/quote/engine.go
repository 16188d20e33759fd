// Package quote computes synthetic carrier rate quotes from collected
// shipment fields. The engine is pure: identical input yields identical
// output apart from the timestamp fields.
package quote

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"freight-ai-assistant/internal/domain/model"
)

// Engine maps shipment data to a ranked quote. It performs no I/O.
type Engine struct {
	validity time.Duration
	now      func() time.Time
}

// NewEngine builds a quote engine with the standard 48h validity window.
func NewEngine() *Engine {
	return &Engine{validity: 48 * time.Hour, now: time.Now}
}

// Quote computes ranked carrier offers for the collected shipment fields.
// Missing numeric fields fall back to defaults; Quote never fails.
func (e *Engine) Quote(d model.ShipmentData) model.Quote {
	now := e.now()

	weight := parseNumeric(d.Weight, defaultWeight)
	value := parseNumeric(d.DeclaredValue, defaultDeclaredValue)

	routeType := ClassifyRoute(d.Origin, d.Destination)

	base := routeBaseRates[routeType] +
		math.Ceil(weight/10)*weightUnitRate +
		math.Ceil(value/1000)*valueUnitRate

	level, ok := serviceLevels[strings.ToLower(strings.TrimSpace(d.ServiceLevel))]
	if !ok {
		level = serviceLevels[defaultServiceLevel]
	}
	rate := base*level.Multiplier + Surcharges(d.SpecialRequirements, value)

	offers := make([]model.CarrierOffer, 0, len(carriers))
	for i, c := range carriers {
		// The per-index transit extension widens the range upper bound; every
		// offer still starts at the service level's minimum.
		maxDays := level.TransitDaysMax + i
		offers = append(offers, model.CarrierOffer{
			CarrierID:         c.ID,
			CarrierName:       c.Name,
			Rate:              round2(rate * c.RateFactor),
			TransitDaysMin:    level.TransitDaysMin,
			TransitDaysMax:    maxDays,
			Reliability:       c.Reliability,
			EstimatedDelivery: now.AddDate(0, 0, maxDays),
		})
	}

	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Rate < offers[j].Rate })

	return model.Quote{
		Offers:      offers,
		Recommended: offers[0],
		RouteType:   routeType,
		GeneratedAt: now,
		ValidUntil:  now.Add(e.validity),
	}
}

// ClassifyRoute matches origin and destination against the country table.
// Unknown or absent endpoints default to domestic.
func ClassifyRoute(origin, destination string) model.RouteType {
	oCountry, oRegion := lookupCountry(origin)
	dCountry, dRegion := lookupCountry(destination)
	switch {
	case oCountry == "" || dCountry == "":
		return model.RouteDomestic
	case oCountry == dCountry:
		return model.RouteDomestic
	case oRegion == dRegion:
		return model.RouteRegional
	default:
		return model.RouteInternational
	}
}

func lookupCountry(place string) (country, region string) {
	p := strings.ToLower(place)
	for c, r := range regionGroups {
		if strings.Contains(p, c) {
			// Prefer the longest match so "united states" beats "usa"-style
			// overlaps inside longer names.
			if len(c) > len(country) {
				country, region = c, r
			}
		}
	}
	return country, region
}

// Surcharges scans special-requirements text against the keyword table.
// Unmatched text contributes zero.
func Surcharges(requirements string, declaredValue float64) float64 {
	text := strings.ToLower(requirements)
	var total float64
	for _, s := range surcharges {
		for _, kw := range s.Keywords {
			if strings.Contains(text, kw) {
				total += s.Flat + s.ValueRate*declaredValue
				break
			}
		}
	}
	return total
}

// parseNumeric pulls the first numeric token out of a free-text field such
// as "50kg electronics" or "$12,000".
func parseNumeric(s string, fallback float64) float64 {
	var b strings.Builder
	seen := false
	for _, r := range s {
		if unicode.IsDigit(r) || (r == '.' && seen) {
			b.WriteRune(r)
			seen = true
			continue
		}
		if r == ',' && seen {
			continue
		}
		if seen {
			break
		}
	}
	if !seen {
		return fallback
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
