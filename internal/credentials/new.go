package credentials

import (
	"os"

	"github.com/nguyentantai21042004/media-flow/internal/config"
)

type implProvider struct {
	cfg      config.GeminiConfig
	readFile func(name string) ([]byte, error)
}

// New creates a Provider backed by the gemini section of the config.
func New(cfg config.GeminiConfig) Provider {
	return &implProvider{
		cfg:      cfg,
		readFile: os.ReadFile,
	}
}
