// Package llm routes prompt generation to a language-model tier per
// character class. Models are black boxes behind the Router interface; the
// router owns their lifecycle.
package llm

import "context"

// Tier is a language-model size class.
type Tier string

const (
	// TierMinor is the smaller model used for minor characters.
	TierMinor Tier = "minor"
	// TierStory is the larger model used for story characters.
	TierStory Tier = "story"
)

// Request carries one bounded generation.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
}

// Router generates text on the requested tier.
type Router interface {
	Generate(ctx context.Context, tier Tier, req Request) (string, error)
	Close() error
}
