// Package advisor asks an Anthropic model for a grounded scouting briefing.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pable/gleague-scout/internal/aggregator"
	"github.com/pable/gleague-scout/internal/export"
	"github.com/pable/gleague-scout/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

// ErrNoAPIKey is returned by New when no key is given or set in the environment.
var ErrNoAPIKey = errors.New("no API key: set ANTHROPIC_API_KEY or use --api-key")

const systemPrompt = `You are a G-League scouting analyst. You are given structured season data
for one or more players and a question from a scout.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable: what should the scout watch, and is the player worth a call-up or a contract.

Metrics glossary:
- Percentile: share of the season league strictly below the player. 50 is the middle of the league.
- Rank "#K out of N": position among N players with a value, ties share the best position.
- Radar score: 0-100 where 50 is the league average, 0 the league minimum and 100 the league maximum.
- Availability: games played as a % of the most games any player played.
- Points per minute: total points over games x 25 estimated minutes.
- Production: points + rebounds + assists.
- Development Target: available, young, and weak in at least one tracked statistic.
- Well-Rounded Target: available, young, at least average in every tracked statistic.`

// Client streams briefings from the Messages API.
type Client struct {
	api   anthropic.Client
	model string
}

// New builds a client. An empty apiKey falls back to $ANTHROPIC_API_KEY.
func New(apiKey, modelID string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if modelID == "" {
		modelID = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{api: anthropic.NewClient(opts...), model: modelID}, nil
}

// Model returns the model id requests are sent to.
func (c *Client) Model() string { return c.model }

// UserMessage frames the data and the question for the model.
func UserMessage(dataJSON, question string) string {
	return fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)
}

// Stream sends the question and writes the streamed answer text to w.
func (c *Client) Stream(ctx context.Context, w io.Writer, dataJSON, question string) error {
	stream := c.api.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(UserMessage(dataJSON, question))),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
			}
		}
	}

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}

// PlayerContext serialises a profile, and the player's target classification
// when known, into compact JSON.
func PlayerContext(p aggregator.PlayerProfile, target *aggregator.Target) (string, error) {
	doc := map[string]any{
		"subject": "player",
		"profile": export.NewProfileDoc(p),
	}
	if target != nil {
		t := map[string]any{
			"label":           target.Label,
			"contract_status": target.Row.Attr(model.AttrContractStatus),
			"percentiles":     roundAll(target.Percentiles),
		}
		if target.Stored != "" {
			t["stored_category"] = target.Stored
		}
		if age := target.Row.Stat(model.StatAge); age.Valid {
			t["age"] = age.Float
		}
		doc["target"] = t
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

// CompareContext serialises a head-to-head comparison.
func CompareContext(c aggregator.Comparison) (string, error) {
	type line struct {
		Stat  string   `json:"stat"`
		Left  *float64 `json:"left"`
		Right *float64 `json:"right"`
	}
	lines := make([]line, 0, len(c.Stats))
	for i, ks := range c.Stats {
		l, r := c.Value(i)
		lines = append(lines, line{Stat: ks.Label, Left: export.Ptr(ks.Stat, l), Right: export.Ptr(ks.Stat, r)})
	}
	doc := map[string]any{
		"subject": "comparison",
		"season":  c.Season,
		"left":    c.Left.Subject,
		"right":   c.Right.Subject,
		"stats":   lines,
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

func roundAll(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = float64(int(v + 0.5))
	}
	return out
}
