package summarizer

import (
	"github.com/nguyentantai21042004/media-flow/internal/logger"
)

const defaultModel = "gemini-2.5-flash"

type implConnector struct {
	model  string
	logger logger.Logger
}

// New creates a Connector that talks to Gemini with the given model.
func New(model string, log logger.Logger) Connector {
	if model == "" {
		model = defaultModel
	}
	return &implConnector{
		model:  model,
		logger: log,
	}
}
