package model

import "time"

// DateLayout is the wire format for calendar dates exchanged with the
// flight-search collaborator.
const DateLayout = "2006-01-02"

// ParsedQuery is the structured form of a free-text flight search. Origin and
// destination are uppercase IATA-like codes; StartDate is strictly before
// EndDate. It is transient: built by a parser strategy, consumed by the
// dialogue controller, and discarded after the provider round-trip.
type ParsedQuery struct {
	Origin      string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
}

// Request converts the query into the provider wire request.
func (q ParsedQuery) Request() SearchRequest {
	return SearchRequest{
		Origin:      q.Origin,
		Destination: q.Destination,
		StartDate:   q.StartDate.Format(DateLayout),
		EndDate:     q.EndDate.Format(DateLayout),
	}
}

// FlightOffer is a single priced itinerary returned for one query.
type FlightOffer struct {
	Price         float64 `json:"price"`
	Airline       string  `json:"airline"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
}

// SearchRequest is the body POSTed to the search endpoint.
type SearchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// SearchResponse is the provider response envelope.
type SearchResponse struct {
	Flights []FlightOffer `json:"flights"`
}
