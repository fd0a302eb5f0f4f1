package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zenese/server/internal/travel/model"
	"github.com/zenese/server/internal/travel/parser"
	"github.com/zenese/server/internal/travel/search"
	"github.com/zenese/server/internal/travel/trips"
	logx "github.com/zenese/server/pkg/logger"
)

const (
	welcomeMessage       = "Hi! I'm your travel co-pilot. Where would you like to go? (e.g., SFO to LAX Nov 17 to Nov 20)"
	parseFailureMessage  = "I'm sorry, I didn't understand the origin, destination, or dates. Could you try a format like 'SFO to LAX Nov 17 to Nov 20'?"
	providerDownMessage  = "Sorry, I couldn't fetch flight details right now. Please try again in a moment."
	noFlightsMessage     = "I couldn't find any flights for that trip. Want to try different dates?"
	trackConfirmedFormat = "Great! I've saved %s to %s to your dashboard and will monitor the price for you."
	trackDeclinedMessage = "No problem. Let me know if you have another trip in mind!"
	saveFailedMessage    = "I found the flight but couldn't save the trip just now. Please try confirming again."
	offerFoundFormat     = "I found a %s flight for $%.2f. I can track the price for you and let you know if it drops. Should I add this to your dashboard?"
)

// affirmativeTokens classify a confirmation turn; matching is by
// case-insensitive substring and anything that doesn't match is a decline.
var affirmativeTokens = []string{"yes", "ok", "sure", "yep", "confirm", "track it"}

// dialogueState is a closed sum: either idle or awaiting confirmation with
// the pending offer and the query that produced it. Holding an offer while
// idle is unrepresentable.
type dialogueState interface{ dialogueState() }

type idle struct{}

type awaitingConfirmation struct {
	offer model.FlightOffer
	query model.ParsedQuery
}

func (idle) dialogueState()                 {}
func (awaitingConfirmation) dialogueState() {}

// Controller runs one conversation: it classifies each user turn as a new
// query or a confirmation, talks to the parser and the search collaborator,
// and appends every turn to an ordered message log. Turns are serialized; a
// turn runs to completion, provider call included, before the next one is
// classified.
type Controller struct {
	mu       sync.Mutex
	parser   parser.QueryParser
	searcher search.Searcher
	store    *trips.Store

	state    dialogueState
	messages []model.ChatMessage
	typing   atomic.Bool
	now      func() time.Time
}

// NewController creates a conversation seeded with the welcome message.
func NewController(p parser.QueryParser, s search.Searcher, store *trips.Store) *Controller {
	c := &Controller{
		parser:   p,
		searcher: s,
		store:    store,
		state:    idle{},
		now:      time.Now,
	}
	c.messages = append(c.messages, model.ChatMessage{
		Text: welcomeMessage,
		At:   c.now(),
	})
	return c
}

// Messages returns a snapshot of the append-only message log, ordered by turn.
func (c *Controller) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// IsTyping reports whether a provider call is in flight for the current turn.
func (c *Controller) IsTyping() bool {
	return c.typing.Load()
}

// HandleTurn processes one user turn and returns the turn-terminal system
// message (empty for blank input). Every failure path ends in a user-visible
// message, never an error.
func (c *Controller) HandleTurn(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.appendLocked(model.ChatMessage{Text: text, IsFromUser: true, At: c.now()})

	var reply string
	switch st := c.state.(type) {
	case awaitingConfirmation:
		reply = c.handleConfirmationLocked(ctx, st, text)
	default:
		reply = c.handleQueryLocked(ctx, text)
	}

	c.appendLocked(model.ChatMessage{Text: reply, At: c.now()})
	return reply
}

func (c *Controller) appendLocked(msg model.ChatMessage) {
	c.messages = append(c.messages, msg)
}

// handleConfirmationLocked resolves an awaiting-confirmation turn. Both
// branches discard the pending offer and return the dialogue to idle.
func (c *Controller) handleConfirmationLocked(ctx context.Context, st awaitingConfirmation, text string) string {
	c.state = idle{}

	if !isAffirmative(text) {
		return trackDeclinedMessage
	}

	seed := model.PriceDataPoint{Date: c.now(), Price: st.offer.Price}
	trip := model.NewTrackedTrip(st.query, seed)
	if err := c.store.Add(ctx, trip); err != nil {
		logx.Error().Err(err).
			Str("origin", trip.Origin).
			Str("destination", trip.Destination).
			Msg("failed to persist confirmed trip")
		return saveFailedMessage
	}

	logx.Info().
		Str("trip_id", trip.ID).
		Str("origin", trip.Origin).
		Str("destination", trip.Destination).
		Float64("seed_price", seed.Price).
		Msg("tracking new trip")
	return fmt.Sprintf(trackConfirmedFormat, trip.Origin, trip.Destination)
}

// handleQueryLocked parses a new query and round-trips it to the search
// collaborator. The dialogue only leaves idle when a live offer is in hand.
func (c *Controller) handleQueryLocked(ctx context.Context, text string) string {
	query, ok := c.parser.Parse(ctx, text)
	if !ok {
		return parseFailureMessage
	}

	c.typing.Store(true)
	offers, err := c.searcher.Search(ctx, query.Request())
	c.typing.Store(false)

	if err != nil {
		logx.Warn().Err(err).
			Str("origin", query.Origin).
			Str("destination", query.Destination).
			Msg("flight search failed")
		return providerDownMessage
	}
	if len(offers) == 0 {
		return noFlightsMessage
	}
	if ctx.Err() != nil {
		// the turn was cancelled while the call was in flight; a stale offer
		// must not drive a state transition
		return providerDownMessage
	}

	offer := offers[0]
	c.state = awaitingConfirmation{offer: offer, query: *query}
	return fmt.Sprintf(offerFoundFormat, offer.Airline, offer.Price)
}

func isAffirmative(text string) bool {
	lowered := strings.ToLower(text)
	for _, token := range affirmativeTokens {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
