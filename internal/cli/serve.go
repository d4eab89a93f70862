package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/media-flow/internal/httpapi"
	"github.com/nguyentantai21042004/media-flow/internal/storage"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the job API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				a.cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().String("addr", "", "Override server.addr")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	uploads, err := storage.NewFileStore(a.cfg.Paths.Uploads)
	if err != nil {
		return err
	}

	// Detached jobs run under base and are cancelled on shutdown.
	base, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()

	handler := httpapi.New(base, httpapi.Deps{
		Config:   a.cfg,
		Jobs:     a.jobs,
		Uploads:  uploads,
		Executor: a.executor,
		Logger:   a.logger,
	})
	server := httpapi.NewServer(a.cfg.Server, handler)

	a.banner(ctx, "Media Flow API")

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "API listening on %s", server.Addr())
		errChan <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		a.logger.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		if err != nil {
			a.logger.Error(ctx, "HTTP server failed: %v", err)
			return err
		}
	}

	// Open event streams end only when their job does.
	cancelJobs()
	for _, s := range a.jobs.List() {
		_ = a.jobs.Cancel(s.ID)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(ctx, "Failed to shutdown server: %v", err)
		return err
	}
	a.logger.Info(ctx, "Server stopped")
	return nil
}
