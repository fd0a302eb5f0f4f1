package parser

import (
	"context"

	"github.com/zenese/server/internal/travel/model"
)

// QueryParser turns free text into a structured flight query. Implementations
// either return a fully populated, internally consistent query (origin and
// destination set, start date strictly before end date) or report absence;
// partial results are never surfaced.
type QueryParser interface {
	Parse(ctx context.Context, text string) (*model.ParsedQuery, bool)
}
