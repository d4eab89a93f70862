package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/media-flow/internal/credentials"
)

// Summarizer turns a prompt into generated text with a single remote call.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Connector builds a Summarizer from resolved credentials.
type Connector interface {
	Connect(ctx context.Context, secret credentials.Secret, project credentials.Project) (Summarizer, error)
}
