package model

import "time"

// RouteType classifies the lane between origin and destination.
type RouteType string

const (
	RouteDomestic      RouteType = "domestic"
	RouteRegional      RouteType = "regional"
	RouteInternational RouteType = "international"
)

// CarrierOffer is one priced option within a quote.
type CarrierOffer struct {
	CarrierID         string    `json:"carrier_id"`
	CarrierName       string    `json:"carrier_name"`
	Rate              float64   `json:"rate"`
	TransitDaysMin    int       `json:"transit_days_min"`
	TransitDaysMax    int       `json:"transit_days_max"`
	Reliability       float64   `json:"reliability"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}

// Quote is a ranked set of carrier offers. It is immutable once produced;
// a new quoting cycle produces a new Quote.
type Quote struct {
	Offers      []CarrierOffer `json:"offers"`
	Recommended CarrierOffer   `json:"recommended_quote"`
	RouteType   RouteType      `json:"route_type"`
	GeneratedAt time.Time      `json:"generated_at"`
	ValidUntil  time.Time      `json:"valid_until"`
}

// Expired reports whether the quote's validity window has passed.
func (q *Quote) Expired(now time.Time) bool {
	return now.After(q.ValidUntil)
}
