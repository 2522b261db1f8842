package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pkordes/haul-slips/internal/config"
	"github.com/pkordes/haul-slips/internal/domain"
	"github.com/pkordes/haul-slips/internal/export"
	"github.com/pkordes/haul-slips/internal/repo"
)

// storeFlags override the environment configuration for one invocation.
type storeFlags struct {
	dbPath      string
	databaseURL string
}

func newRootCmd() *cobra.Command {
	var flags storeFlags

	root := &cobra.Command{
		Use:           "slipctl",
		Short:         "Manage the haul slip store",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database file (default $DB_PATH)")
	root.PersistentFlags().StringVar(&flags.databaseURL, "database-url", "", "Postgres connection string (default $DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(&flags),
		newExportCmd(&flags),
		newListCmd(&flags),
	)
	return root
}

// openStore reads the configuration, applies flag overrides, and opens the
// migrated store. The caller must Close it.
func openStore(ctx context.Context, cmd *cobra.Command, flags *storeFlags) (*repo.Store, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.databaseURL != "" {
		cfg.DatabaseURL = flags.databaseURL
	}

	// Migration progress goes to stderr so it never mixes with exported data.
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)))

	store, err := repo.OpenStore(ctx, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

func newMigrateCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the slips schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", store.Backend)
			return nil
		},
	}
}

func newExportCmd(flags *storeFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored slip as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer store.Close()

			slips, err := store.Slips.ListAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing slips: %w", err)
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if err := export.WriteAll(w, slips); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d slips to %s\n", len(slips), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newListCmd(flags *storeFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent slips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer store.Close()

			slips, err := store.Slips.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing slips: %w", err)
			}
			if len(slips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No slips found.")
				return nil
			}
			return printSlips(cmd.OutOrStdout(), slips)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultListLimit, "maximum number of slips")
	return cmd
}

func printSlips(w io.Writer, slips []domain.Slip) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDRIVER\tTRUCK\tJOB\tHOURS\tMATERIAL\tID")
	for _, s := range slips {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s-%s\t%s\t%s\n",
			s.Date, s.Driver, s.TruckNumber, s.Job, s.StartTime, s.EndTime, s.Material, s.ID)
	}
	return tw.Flush()
}
