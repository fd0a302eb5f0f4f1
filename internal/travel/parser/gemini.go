package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/zenese/server/internal/travel/model"
	logx "github.com/zenese/server/pkg/logger"
)

const toolFindFlights = "find_flights"

const extractionPromptFmt = `You are a flight query extraction engine.
Today's date is %s.
Read the user's message and call the %s tool exactly once with the origin and
destination airport codes and the trip dates. Dates must be formatted as
YYYY-MM-DD. If the message does not describe a flight search between two
places with two dates, do not call the tool.`

// findFlightsArgs is the fixed shape the model is constrained to emit.
type findFlightsArgs struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// GeminiStrategy delegates query extraction to a gemini chat model bound to a
// single structured tool call.
type GeminiStrategy struct {
	cm  *gemini.ChatModel
	now func() time.Time
}

// GeminiConfig carries the provider credentials and model parameters.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   model.QueryModelConfig
}

// NewGemini creates the model-assisted strategy.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiStrategy, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating query extraction model")
		return nil, fmt.Errorf("error creating query extraction model: %w", err)
	}

	if err := cm.BindTools([]*schema.ToolInfo{findFlightsToolInfo()}); err != nil {
		logx.Error().Err(err).Msg("Failed to bind extraction tool")
		return nil, fmt.Errorf("failed to bind extraction tool: %w", err)
	}

	return &GeminiStrategy{cm: cm, now: time.Now}, nil
}

func findFlightsToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: toolFindFlights,
		Desc: "Finds flights between two locations on specified dates.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"origin": {
				Type:     "string",
				Desc:     "Departure airport code, e.g. SFO",
				Required: true,
			},
			"destination": {
				Type:     "string",
				Desc:     "Arrival airport code, e.g. LAX",
				Required: true,
			},
			"start_date": {
				Type:     "string",
				Desc:     "Outbound date in YYYY-MM-DD format",
				Required: true,
			},
			"end_date": {
				Type:     "string",
				Desc:     "Return date in YYYY-MM-DD format",
				Required: true,
			},
		}),
	}
}

// Parse implements QueryParser. Any backend failure or undecodable tool
// output is absence, never an error surfaced to the caller.
func (g *GeminiStrategy) Parse(ctx context.Context, text string) (*model.ParsedQuery, bool) {
	prompt := fmt.Sprintf(extractionPromptFmt, g.now().Format(model.DateLayout), toolFindFlights)
	messages := []*schema.Message{
		schema.SystemMessage(prompt),
		schema.UserMessage(text),
	}

	out, err := g.cm.Generate(ctx, messages)
	if err != nil {
		logx.Warn().Err(err).Msg("query extraction model call failed")
		return nil, false
	}
	if out == nil {
		return nil, false
	}

	for _, tc := range out.ToolCalls {
		if tc.Function.Name != toolFindFlights {
			continue
		}
		var args findFlightsArgs
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			logx.Warn().Err(err).Msg("undecodable tool arguments from extraction model")
			return nil, false
		}
		return queryFromArgs(args)
	}

	logx.Debug().Msg("extraction model emitted no tool call")
	return nil, false
}

// queryFromArgs validates the stringly-typed tool output into a ParsedQuery,
// upper-casing the codes and reordering an inverted date pair.
func queryFromArgs(args findFlightsArgs) (*model.ParsedQuery, bool) {
	origin := strings.ToUpper(strings.TrimSpace(args.Origin))
	destination := strings.ToUpper(strings.TrimSpace(args.Destination))
	if origin == "" || destination == "" {
		return nil, false
	}

	start, err := time.Parse(model.DateLayout, strings.TrimSpace(args.StartDate))
	if err != nil {
		return nil, false
	}
	end, err := time.Parse(model.DateLayout, strings.TrimSpace(args.EndDate))
	if err != nil {
		return nil, false
	}
	if start.Equal(end) {
		return nil, false
	}
	if end.Before(start) {
		start, end = end, start
	}

	return &model.ParsedQuery{
		Origin:      origin,
		Destination: destination,
		StartDate:   start,
		EndDate:     end,
	}, true
}
