package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/compiler"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/transport"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

// DefaultModel is the chat model used when none is configured
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You convert a vehicle search query into a JSON object.
Use only these keys, omitting any you cannot determine:
make, model, year, startYear, endYear, series, trims (array), colors (array),
bodyStyle, drivetrain, maxPrice, zip, radius.
Use the manufacturer's spelling for make and model ("Chevrolet", "F-150").
Put a truck's weight class in series ("1500", "2500HD", "3500HD") and words
such as "dually" or "3/4 ton" in bodyStyle.
If the query is not about a vehicle respond with {"error": "<reason>"}.
Respond with the JSON object only.`

// LLMOptions configures the OpenAI-compatible extractor
type LLMOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LLM extracts a vehicle descriptor with a chat completion call and compiles
// it locally, so retailer URLs never depend on model output formatting.
type LLM struct {
	opts     LLMOptions
	compiler *compiler.Compiler
}

// NewLLM creates an LLM extractor
func NewLLM(opts LLMOptions, c *compiler.Compiler) *LLM {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &LLM{opts: opts, compiler: c}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type parsedQuery struct {
	vehicle.Descriptor
	Error string `json:"error,omitempty"`
}

// Extract implements Extractor
func (l *LLM) Extract(ctx context.Context, query string) (*vehicle.FilterBundle, error) {
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	req := chatRequest{
		Model: l.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Query: %q", query)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	headers := map[string]string{}
	if l.opts.APIKey != "" {
		headers["Authorization"] = "Bearer " + l.opts.APIKey
	}

	var resp chatResponse
	if err := transport.PostJSON(ctx, l.opts.BaseURL+"/chat/completions", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to call extractor model: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoResult
	}

	content := stripFences(resp.Choices[0].Message.Content)
	if content == "" || content == "null" {
		return nil, ErrNoResult
	}

	var parsed parsedQuery
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode extractor output: %w", err)
	}
	if parsed.Error != "" && !parsed.HasIdentity() {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, parsed.Error)
	}

	bundle, err := compile(l.compiler, query, parsed.Descriptor)
	if err != nil {
		return nil, err
	}
	bundle.Error = parsed.Error
	logger.DebugWithFields("Extracted filters", map[string]interface{}{
		"query":    query,
		"compiled": bundle.Compiled(),
	})
	return bundle, nil
}

// stripFences removes a surrounding markdown code block
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
