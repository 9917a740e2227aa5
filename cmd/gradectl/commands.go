package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/collegegrades/grades-api/internal/config"
	"github.com/collegegrades/grades-api/internal/engine"
	"github.com/spf13/cobra"
)

// storeOpener loads the dataset described by cfg, logging to logOut.
type storeOpener func(ctx context.Context, cfg *config.Config, logOut io.Writer) (*engine.Store, error)

type globalFlags struct {
	source   string
	database string
	table    string
	logLevel string
	filters  []string
}

func rootCmd(open storeOpener) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "gradectl",
		Short: "Query grade distributions from a local dataset",
		Long: `gradectl loads the grade dataset into memory and runs one query against it,
printing the result as JSON.

Filters are given as --filter field=value and may be repeated. Recognized
fields are university, term, year, subject, catalog_number, instructor and title.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.source, "source", "", "Dataset source (sqlite, firestore)")
	pf.StringVar(&flags.database, "db", "", "SQLite database path")
	pf.StringVar(&flags.table, "table", "", "SQLite table name")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringArrayVarP(&flags.filters, "filter", "f", nil, "Filter as field=value")

	cmd.AddCommand(
		recordsCmd(open, &flags),
		summaryCmd(open, &flags),
		suggestCmd(open, &flags),
	)
	return cmd
}

func recordsCmd(open storeOpener, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List matching section-offerings with their GPA",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, flags, func(store *engine.Store, filters engine.FilterSet) (any, error) {
				rows, err := store.Records(cmd.Context(), filters)
				if err != nil {
					return nil, err
				}
				return map[string]any{"count": len(rows), "records": rows}, nil
			})
		},
	}
}

func summaryCmd(open storeOpener, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Sum outcome counts and average GPA over matching records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, flags, func(store *engine.Store, filters engine.FilterSet) (any, error) {
				return store.Summary(cmd.Context(), filters)
			})
		},
	}
}

func suggestCmd(open storeOpener, flags *globalFlags) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "suggest FIELD",
		Short: "Suggest values of FIELD under the given filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := args[0]
			return withStore(cmd, open, flags, func(store *engine.Store, filters engine.FilterSet) (any, error) {
				values, err := store.Suggest(cmd.Context(), field, filters, search)
				if err != nil {
					return nil, err
				}
				return map[string]any{"field": field, "count": len(values), "suggestions": values}, nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive substring to match")
	return cmd
}

func withStore(cmd *cobra.Command, open storeOpener, flags *globalFlags, query func(*engine.Store, engine.FilterSet) (any, error)) error {
	filters, err := parseFilters(flags.filters)
	if err != nil {
		return err
	}

	cfg, err := flags.config()
	if err != nil {
		return err
	}

	store, err := open(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := query(store, filters)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// config layers the command-line flags over the usual configuration sources.
func (f *globalFlags) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.database != "" {
		cfg.SQLite.Path = f.database
	}
	if f.table != "" {
		cfg.SQLite.Table = f.table
	}
	cfg.Logging.Level = f.logLevel
	cfg.Logging.File = ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFilters(raw []string) (engine.FilterSet, error) {
	filters := make(engine.FilterSet, 0, len(raw))
	for _, item := range raw {
		field, value, ok := strings.Cut(item, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", item)
		}
		filters = append(filters, engine.Filter{Field: field, Value: value})
	}
	return filters, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
