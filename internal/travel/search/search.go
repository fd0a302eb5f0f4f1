package search

import (
	"context"

	"github.com/zenese/server/internal/travel/model"
)

// Searcher is the flight-search collaborator port. Offers come back ranked by
// the provider; callers that want a single quote take the first one.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) ([]model.FlightOffer, error)
}
