package job

import (
	"os"
	"sync"
	"time"

	"github.com/nguyentantai21042004/media-flow/internal/config"
	"github.com/nguyentantai21042004/media-flow/internal/credentials"
	"github.com/nguyentantai21042004/media-flow/internal/logger"
	"github.com/nguyentantai21042004/media-flow/internal/summarizer"
	"github.com/nguyentantai21042004/media-flow/pkg/executor"
)

type implManager struct {
	cfg         *config.Config
	executor    executor.Executor
	connector   summarizer.Connector
	credentials credentials.Provider
	logger      logger.Logger
	sem         *semaphore

	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	now       func() time.Time

	mu   sync.RWMutex
	jobs map[string]*Job
}

// New creates a new Manager instance
func New(cfg *config.Config, exec executor.Executor, conn summarizer.Connector, creds credentials.Provider, log logger.Logger) Manager {
	return NewForTests(cfg, exec, conn, creds, log, os.MkdirTemp, os.RemoveAll, time.Now)
}

// NewForTests constructs a manager with injectable filesystem and clock hooks.
func NewForTests(
	cfg *config.Config,
	exec executor.Executor,
	conn summarizer.Connector,
	creds credentials.Provider,
	log logger.Logger,
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	now func() time.Time,
) *implManager {
	return &implManager{
		cfg:         cfg,
		executor:    exec,
		connector:   conn,
		credentials: creds,
		logger:      log,
		sem:         newSemaphore(cfg.Performance.MaxConcurrent),
		mkdirTemp:   mkdirTemp,
		removeAll:   removeAll,
		now:         now,
		jobs:        make(map[string]*Job),
	}
}
