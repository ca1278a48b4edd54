package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/concierge/store"
)

var errNoStore = errors.New("no payload store configured (set store.path or store.redis_addr, or pass --store)")

// openStore builds the configured payload store, with --store overriding
// the file store path.
func openStore(storePath string) (store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}

	s, err := store.New(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload store: %w", err)
	}
	if s == nil {
		return nil, errNoStore
	}
	return s, nil
}

func importCmd() *cobra.Command {
	var (
		menuPath  string
		notesPath string
		key       string
		storePath string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a catalog payload and save it under a key",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := buildPayload(menuPath, notesPath)
			if err != nil {
				return err
			}

			s, err := openStore(storePath)
			if err != nil {
				return err
			}
			if err := s.Save(cmd.Context(), key, payload); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %d items as %q\n", payload.Len(), key)
			return nil
		},
	}

	cmd.Flags().StringVar(&menuPath, "menu", "", "menu spreadsheet (.xlsx or .csv)")
	cmd.Flags().StringVar(&notesPath, "notes", "", "free-text notes file")
	cmd.Flags().StringVar(&key, "key", "", "catalog key")
	cmd.Flags().StringVar(&storePath, "store", "", "payload directory (overrides config)")
	cmd.MarkFlagRequired("menu")
	cmd.MarkFlagRequired("key")

	return cmd
}

func catalogsCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "List saved catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(storePath)
			if err != nil {
				return err
			}
			keys, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "payload directory (overrides config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <key>...",
		Short: "Delete saved catalogs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(storePath)
			if err != nil {
				return err
			}
			return s.Delete(cmd.Context(), args...)
		},
	})

	return cmd
}
