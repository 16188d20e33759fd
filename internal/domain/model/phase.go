package model

// Phase labels which shipment fields are still missing. It is derived from
// field completeness every turn, never stored as a free choice.
type Phase string

const (
	PhaseGreeting         Phase = "greeting"
	PhaseRouteCollection  Phase = "route_collection"
	PhaseCargoCollection  Phase = "cargo_collection"
	PhaseServiceSelection Phase = "service_selection"
	PhaseReadyForQuote    Phase = "ready_for_quote"
	PhaseQuoteGenerated   Phase = "quote_generated"
)

// DerivePhase recomputes the conversation phase from what has been collected
// so far. Identical field sets always yield the identical phase regardless of
// message history.
func DerivePhase(d ShipmentData, hasQuote bool) Phase {
	switch {
	case hasQuote:
		return PhaseQuoteGenerated
	case d.Origin == "" || d.Destination == "":
		return PhaseRouteCollection
	case d.Cargo == "":
		return PhaseCargoCollection
	case d.Weight == "":
		return PhaseServiceSelection
	case d.ServiceLevel == "":
		return PhaseServiceSelection
	default:
		return PhaseReadyForQuote
	}
}
