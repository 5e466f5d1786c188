package intelligence

import "context"

// ChatModel is an opaque text-completion capability. The assistant core is
// rule-based; the model only backs the small-talk path for utterances no
// rule recognizes, and every caller must degrade gracefully when it fails.
type ChatModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
