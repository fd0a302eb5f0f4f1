package parser

import (
	"context"
	"strings"
	"time"
	"unicode"

	logx "github.com/zenese/server/pkg/logger"

	"github.com/zenese/server/internal/travel/model"
)

// placeStopwords are 3-letter tokens that look like airport codes but are
// ordinary English words or month abbreviations.
var placeStopwords = map[string]struct{}{
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "may": {}, "jun": {},
	"jul": {}, "aug": {}, "sep": {}, "oct": {}, "nov": {}, "dec": {},
	"the": {}, "and": {}, "for": {}, "are": {}, "you": {}, "how": {},
	"not": {}, "but": {}, "all": {}, "any": {}, "can": {}, "get": {},
	"was": {}, "one": {}, "two": {}, "our": {}, "out": {}, "now": {},
	"new": {}, "day": {}, "who": {}, "its": {}, "did": {}, "yes": {},
	"let": {}, "say": {}, "she": {}, "him": {}, "her": {}, "his": {},
	"had": {}, "has": {}, "see": {}, "use": {}, "way": {}, "too": {},
	"per": {}, "via": {}, "fly": {},
}

// RuleStrategy extracts queries without a model: place-like tokens become
// origin and destination in order of appearance, and every date mentioned is
// collected independently, the two earliest becoming the travel window.
type RuleStrategy struct {
	dates *dateDetector
}

// NewRule builds the rule-based strategy using the wall clock to resolve
// relative dates.
func NewRule() *RuleStrategy {
	return NewRuleAt(time.Now)
}

// NewRuleAt is NewRule with an injectable clock.
func NewRuleAt(now func() time.Time) *RuleStrategy {
	return &RuleStrategy{dates: newDateDetector(now)}
}

// Parse implements QueryParser. It requires at least two place tokens and at
// least two distinct dates; anything less is absent, never a partial query.
func (r *RuleStrategy) Parse(_ context.Context, text string) (*model.ParsedQuery, bool) {
	places := placeTokens(text)
	dates := r.dates.detect(text)

	if len(places) < 2 || len(dates) < 2 {
		logx.Debug().
			Int("places", len(places)).
			Int("dates", len(dates)).
			Msg("rule parser: not enough entities to form a query")
		return nil, false
	}

	// dates are already sorted ascending and distinct; surplus dates beyond
	// the two earliest are dropped
	return &model.ParsedQuery{
		Origin:      places[0],
		Destination: places[1],
		StartDate:   dates[0],
		EndDate:     dates[1],
	}, true
}

// placeTokens scans for IATA-like codes: standalone 3-letter alphabetic
// tokens, matched case-insensitively and upper-cased, minus stopwords.
func placeTokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var places []string
	for _, f := range fields {
		if len(f) != 3 {
			continue
		}
		if _, stop := placeStopwords[strings.ToLower(f)]; stop {
			continue
		}
		places = append(places, strings.ToUpper(f))
		if len(places) == 2 {
			break
		}
	}
	return places
}
