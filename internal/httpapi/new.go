package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/nguyentantai21042004/media-flow/internal/config"
	"github.com/nguyentantai21042004/media-flow/internal/job"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

// maxUploadBytes bounds a single multipart upload.
const maxUploadBytes = 4 << 30

// Uploads stores uploaded media and resolves references to local paths.
type Uploads interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Path(key string) (string, error)
}

// Deps are the collaborators the HTTP surface calls into.
type Deps struct {
	Config   *config.Config
	Jobs     job.Manager
	Uploads  Uploads
	Executor executor.Executor
	Logger   logger.Logger
}

type handler struct {
	base     context.Context
	cfg      *config.Config
	jobs     job.Manager
	uploads  Uploads
	executor executor.Executor
	logger   logger.Logger
}

// New builds the HTTP handler. Detached jobs run under base, so cancelling
// it stops them during shutdown.
func New(base context.Context, d Deps) http.Handler {
	h := &handler{
		base:     base,
		cfg:      d.Config,
		jobs:     d.Jobs,
		uploads:  d.Uploads,
		executor: d.Executor,
		logger:   d.Logger,
	}
	return h.routes()
}
