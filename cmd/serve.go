package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/rules"
	"github.com/sells-group/assessment-advisor/internal/server"
)

const shutdownTimeout = 15 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the advice HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		// The table is reloaded per request; this only fails fast on a bad path.
		if _, err := rules.LoadFile(ctx, cfg.Rules.Path); err != nil {
			return eris.Wrap(err, "load rules")
		}

		env, err := initEnv(ctx, initCompleter(false))
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildHandler(env, cfg.Rules.Path, cfg.Server.FrontendOrigin),
			ReadHeaderTimeout: 10 * time.Second,
		}
		return serveUntilDone(ctx, srv)
	},
}

func buildHandler(env *advisorEnv, rulesPath, origin string) http.Handler {
	loader := func(ctx context.Context) (rules.Table, error) {
		return rules.LoadFile(ctx, rulesPath)
	}
	return server.New(env.Pipeline, loader, server.Options{FrontendOrigin: origin}).Handler()
}

// serveUntilDone runs srv until ctx is cancelled, then drains in-flight
// requests.
func serveUntilDone(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
