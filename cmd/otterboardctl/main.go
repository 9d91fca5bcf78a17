package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/its-jojoo/otterboard/internal/adapter/storage"
	"github.com/its-jojoo/otterboard/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterboard/internal/bootstrap"
	"github.com/its-jojoo/otterboard/internal/config"
	"github.com/its-jojoo/otterboard/internal/core"
	"github.com/its-jojoo/otterboard/internal/logging"
	"github.com/its-jojoo/otterboard/internal/server"
	"github.com/its-jojoo/otterboard/internal/usecase/library"
)

type ExportItem struct {
	ID        string        `json:"id" yaml:"id"`
	Type      string        `json:"type" yaml:"type"`
	Title     string        `json:"title" yaml:"title"`
	Content   string        `json:"content" yaml:"content"`
	Preview   string        `json:"preview,omitempty" yaml:"preview,omitempty"`
	CreatedAt string        `json:"created_at" yaml:"created_at"`
	Pinned    bool          `json:"pinned" yaml:"pinned"`
	Metadata  core.Metadata `json:"metadata" yaml:"metadata"`
}

var flags = struct {
	ConfigFile string
	Format     string
	Out        string
	Tab        string
	Limit      int
	Yes        bool
}{}

var root = &cobra.Command{
	Use:   "otterboardctl",
	Short: "Inspect and export the otterboard library",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadItems(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if flags.Out != "" && flags.Out != "-" {
			f, err := os.Create(flags.Out)
			if err != nil {
				return fmt.Errorf("create output error: %w", err)
			}
			defer f.Close()
			w = f
		}

		export := toExport(items, flags.Limit)
		if err := encode(w, flags.Format, export); err != nil {
			return err
		}
		if w != cmd.OutOrStdout() {
			fmt.Fprintln(cmd.OutOrStdout(), "exported", len(export), "items to", flags.Out)
		}
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of items in the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadItems(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), len(items))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the server database with a demo collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return err
		}
		path, err := cfg.ServerDatabase()
		if err != nil {
			return err
		}
		st, err := sqlite.Open(path)
		if err != nil {
			return fmt.Errorf("db open error: %w", err)
		}
		defer st.Close()

		uid, err := st.EnsureUser(cmd.Context(), cfg.Server.User)
		if err != nil {
			return err
		}
		n, err := server.Seed(cmd.Context(), st, uid, time.Now())
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "resource items already exist, skipping seed")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "seeded", n, "items for", cfg.Server.User)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored library document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flags.Yes {
			return fmt.Errorf("refusing to reset without --yes")
		}
		cfg, err := config.Load(flags.ConfigFile)
		if err != nil {
			return err
		}
		log := logging.New(cfg.Logging.Level, os.Stderr)

		backend, err := bootstrap.OpenBackend(cfg, false)
		if err != nil {
			return fmt.Errorf("db open error: %w", err)
		}
		store := storage.NewAdapter(backend, log)
		defer store.Close()

		resetLibrary(cmd.Context(), store, cmd.OutOrStdout())
		return nil
	},
}

// resetLibrary removes the collection document. Permission flags are kept.
func resetLibrary(ctx context.Context, store *storage.Adapter, w io.Writer) {
	n := len(store.LoadCollection(ctx))
	store.ClearCollection(ctx)
	fmt.Fprintln(w, "library cleared,", n, "items removed")
}

func init() {
	root.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "configuration file")
	root.PersistentFlags().StringVar(&flags.Tab, "tab", "", "restrict to a view: clipboard, pinned or captures")
	exportCmd.Flags().StringVarP(&flags.Format, "format", "f", "json", "output format: json or yaml")
	exportCmd.Flags().StringVarP(&flags.Out, "out", "o", "-", "output file path")
	exportCmd.Flags().IntVar(&flags.Limit, "limit", 0, "max items to export (0 for all)")
	resetCmd.Flags().BoolVar(&flags.Yes, "yes", false, "confirm deleting the library")
	root.AddCommand(exportCmd, countCmd, seedCmd, resetCmd)
}

func loadItems(ctx context.Context) ([]core.Item, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Logging.Level, os.Stderr)

	backend, err := bootstrap.OpenBackend(cfg, false)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	store := storage.NewAdapter(backend, log)
	defer store.Close()

	lib := library.New(store, library.WithLogger(log))
	lib.Load(ctx)

	if flags.Tab == "" {
		return lib.All(), nil
	}
	tab, err := library.ParseTab(flags.Tab)
	if err != nil {
		return nil, err
	}
	return lib.View(tab), nil
}

func toExport(items []core.Item, limit int) []ExportItem {
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]ExportItem, 0, len(items))
	for _, it := range items {
		out = append(out, ExportItem{
			ID:        it.ID,
			Type:      string(it.Type),
			Title:     it.Title,
			Content:   it.Content,
			Preview:   it.Preview,
			CreatedAt: it.Time().UTC().Format(time.RFC3339Nano),
			Pinned:    it.IsPinned,
			Metadata:  it.Metadata,
		})
	}
	return out
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
