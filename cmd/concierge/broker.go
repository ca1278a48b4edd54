package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/concierge/credential"
	"github.com/tailored-agentic-units/concierge/internal/dotenv"
	"github.com/tailored-agentic-units/concierge/observability"
)

// newBrokerMux mounts the plain handler at path and the Connect procedure
// at its own path.
func newBrokerMux(cfg credential.HandlerConfig, path string) (*http.ServeMux, error) {
	plain, err := credential.NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	rpcPath, rpc, err := credential.NewConnectHandler(cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(path, plain)
	mux.Handle(rpcPath, rpc)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux, nil
}

func brokerCmd() *cobra.Command {
	var (
		addr     string
		model    string
		path     string
		upstream string
	)

	cmd := &cobra.Command{
		Use:   "broker",
		Short: "Serve short-lived realtime credentials",
		Long:  "Exchange the server's OPENAI_API_KEY for short-lived client secrets. The key is read from the environment after loading .env.local and .env.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dotenv.Load(".env.local", ".env"); err != nil {
				return err
			}

			logger := newLogger(os.Stderr)
			useLogger(logger)

			mux, err := newBrokerMux(credential.HandlerConfig{
				APIKey:      os.Getenv("OPENAI_API_KEY"),
				Model:       model,
				UpstreamURL: upstream,
				Observer:    observability.NewSlogObserver(logger),
			}, path)
			if err != nil {
				return fmt.Errorf("failed to create broker: %w", err)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errs := make(chan error, 1)
			go func() {
				logger.Info("broker listening", "addr", addr, "path", path, "rpc", credential.IssueProcedure)
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				logger.Info("broker shutting down")
				return srv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8787", "listen address")
	cmd.Flags().StringVar(&model, "model", credential.DefaultModel, "realtime model for issued sessions")
	cmd.Flags().StringVar(&path, "path", "/api/session", "credential endpoint path")
	cmd.Flags().StringVar(&upstream, "upstream", credential.DefaultUpstreamURL, "client secret endpoint")
	cmd.Flags().MarkHidden("upstream")

	return cmd
}
