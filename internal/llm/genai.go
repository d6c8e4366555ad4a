package llm

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// GenAI is the Gemini-backed router. Each tier maps to a model name; the
// client is created lazily on first use. Only one generation runs per tier
// at a time.
type GenAI struct {
	models map[Tier]string

	mu     sync.Mutex
	client *genai.Client
}

// NewGenAI creates a router over the given tier model names.
func NewGenAI(minorModel, storyModel string) *GenAI {
	return &GenAI{
		models: map[Tier]string{
			TierMinor: minorModel,
			TierStory: storyModel,
		},
	}
}

// Generate runs one bounded generation on the tier's model.
func (g *GenAI) Generate(ctx context.Context, tier Tier, req Request) (string, error) {
	model, ok := g.models[tier]
	if !ok || model == "" {
		return "", fmt.Errorf("no model configured for tier %q", tier)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{})
		if err != nil {
			return "", fmt.Errorf("create genai client: %w", err)
		}
		g.client = client
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:   genai.Ptr(float32(req.Temperature)),
		StopSequences: req.Stop,
	}
	if req.TopP > 0 {
		cfg.TopP = genai.Ptr(float32(req.TopP))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate on %s: %w", model, err)
	}
	return extractText(resp), nil
}

// Close releases the client handle.
func (g *GenAI) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.client = nil
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

var _ Router = (*GenAI)(nil)
