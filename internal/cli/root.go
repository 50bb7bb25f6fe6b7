// Package cli provides the command-line interface for macrobot.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/macrobot-go/internal/config"
	"github.com/raphaelgruber/macrobot-go/internal/db"
	"github.com/raphaelgruber/macrobot-go/internal/export"
	"github.com/raphaelgruber/macrobot-go/internal/models"
	"github.com/raphaelgruber/macrobot-go/internal/store"
	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, db client and store
	cfg      config.Config
	dbClient *db.Client
	profiles *store.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "macroctl",
	Short: "Manage macro profiles from the terminal",
	Long: `Macroctl manages capture-and-synthesis macro profiles: create profiles,
macros and steps, run synthesis, and move profiles between machines as
self-contained export documents.

State lives in SurrealDB; the MCP server (macrobot) and this CLI share it.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx := context.Background()
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.DBURL,
			Namespace: cfg.DBNamespace,
			Database:  cfg.DBDatabase,
			Username:  cfg.DBUser,
			Password:  cfg.DBPass,
			AuthLevel: cfg.DBAuthLevel,
		}, cliLogger())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return loadStore(ctx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
	},
}

func cliLogger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadStore pulls all stored profiles into a fresh in-memory store.
func loadStore(ctx context.Context) error {
	logger := cliLogger()
	engine := synthesis.NewEngine(synthesis.NewRuleStrategy(cfg.SynthSeed), logger)
	profiles = store.New(engine, store.WithLogger(logger))

	records, err := dbClient.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	loaded := make([]*models.Profile, 0, len(records))
	for _, rec := range records {
		p, err := export.RestoreProfile(rec.ID, rec.Created, rec.Updated, &rec.Doc)
		if err != nil {
			return fmt.Errorf("restore profile %s: %w", rec.ID, err)
		}
		loaded = append(loaded, p)
	}
	profiles.Restore(loaded)
	return nil
}

// saveProfile writes one profile's current state back to the database.
func saveProfile(ctx context.Context, profileID string) error {
	p, err := profiles.GetProfile(profileID)
	if err != nil {
		return err
	}
	doc, err := profiles.ExportProfile(profileID)
	if err != nil {
		return err
	}
	return dbClient.SaveProfile(ctx, db.ProfileRecord{
		ID:      p.ID,
		Created: p.CreatedAt,
		Updated: p.UpdatedAt,
		Doc:     *doc,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the macroctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("macroctl %s\n", Version)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(macroCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
