package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/concierge/concierge"
	"github.com/tailored-agentic-units/concierge/observability"
)

var (
	configFile string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "concierge",
		Short: "Voice and text menu assistant grounded in an uploaded catalog",
		Long: `Concierge answers guest questions about a menu through a realtime speech agent.

Start a conversation:       concierge chat --menu menu.xlsx --notes notes.txt
Save a catalog:             concierge import --menu menu.csv --key lunch
Run the credential broker:  concierge broker --addr :8787`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (JSON, or YAML by extension)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(chatCmd())
	root.AddCommand(importCmd())
	root.AddCommand(catalogsCmd())
	root.AddCommand(brokerCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig returns defaults, or the config file merged over them.
func loadConfig() (*concierge.Config, error) {
	if configFile == "" {
		cfg := concierge.DefaultConfig()
		return &cfg, nil
	}
	cfg, err := concierge.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// useLogger routes the "slog" observer to logger.
func useLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))
}
