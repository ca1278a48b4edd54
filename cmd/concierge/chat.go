package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/concierge/catalog"
	"github.com/tailored-agentic-units/concierge/concierge"
	"github.com/tailored-agentic-units/concierge/observability"
)

func chatCmd() *cobra.Command {
	var (
		menuPath   string
		notesPath  string
		catalogKey string
		brokerURL  string
		storePath  string
		logFile    string
		audioIn    string
		muted      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the menu assistant",
		Long:  "Build a catalog from --menu (and --notes), or load a saved one with --catalog, then start a realtime session and open the chat view.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if menuPath == "" && catalogKey == "" {
				return errors.New("either --menu or --catalog is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if brokerURL != "" {
				cfg.Credential.URL = brokerURL
			}
			if storePath != "" {
				cfg.Store.Path = storePath
			}
			if muted {
				cfg.MuteOnStart = true
			}

			// the chat view owns the terminal, so logs go to a file or nowhere
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			} else {
				cfg.Observer = "noop"
			}
			useLogger(newLogger(logOut))

			logs, err := observability.GetObserver(cfg.Observer)
			if err != nil {
				return err
			}
			notices := &noticeObserver{}
			c, err := concierge.New(cfg, concierge.WithObserver(observability.NewMultiObserver(logs, notices)))
			if err != nil {
				return fmt.Errorf("failed to create concierge: %w", err)
			}

			payload, err := resolvePayload(cmd, c, menuPath, notesPath, catalogKey)
			if err != nil {
				return err
			}

			if audioIn != "" {
				f, err := os.Open(audioIn)
				if err != nil {
					return fmt.Errorf("failed to open audio input: %w", err)
				}
				defer f.Close()
				ctx, stop := context.WithCancel(cmd.Context())
				defer stop()
				go func() {
					if err := streamAudio(ctx, f, c.AppendAudio, audioChunkBytes, audioChunkSpan); err != nil {
						slog.Error("audio input stopped", "error", err)
					}
				}()
			}

			model := newChatModel(cmd.Context(), c, payload, cfg.AgentName)
			model.notices = notices
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			c.Shutdown()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&menuPath, "menu", "", "menu spreadsheet (.xlsx or .csv)")
	cmd.Flags().StringVar(&notesPath, "notes", "", "free-text notes file")
	cmd.Flags().StringVar(&catalogKey, "catalog", "", "saved catalog key; with --menu, the built catalog is saved under it")
	cmd.Flags().StringVar(&brokerURL, "broker", "", "credential broker base URL (overrides config)")
	cmd.Flags().StringVar(&storePath, "store", "", "payload directory (overrides config)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	cmd.Flags().StringVar(&audioIn, "audio-in", "", "raw 24kHz mono 16-bit PCM to stream to the session (file or FIFO)")
	cmd.Flags().BoolVar(&muted, "muted", false, "start with the microphone muted")

	return cmd
}

// resolvePayload builds the payload from files, saving it under key when a
// store is configured, or loads it by key.
func resolvePayload(cmd *cobra.Command, c *concierge.Concierge, menuPath, notesPath, key string) (catalog.Payload, error) {
	s := c.Store()

	if menuPath != "" {
		payload, err := buildPayload(menuPath, notesPath)
		if err != nil {
			return catalog.Payload{}, err
		}
		if key != "" && s != nil {
			if err := s.Save(cmd.Context(), key, payload); err != nil {
				return catalog.Payload{}, err
			}
		}
		return payload, nil
	}

	if s == nil {
		return catalog.Payload{}, errNoStore
	}
	return s.Load(cmd.Context(), key)
}
