package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/martinemde/gamepilot/outcomes"
)

var (
	dbPath   string
	logLevel string
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gamepilot",
		Short: "gamepilot - inspect recorded play sessions",
		Long: `gamepilot manages the action history recorded by the decision loop.
It reads the same SQLite database the loop writes, so stats reflect
everything the agent has tried so far.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; environment variables win either way.
			_ = godotenv.Load()
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			log.SetLevel(level)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "gamepilot.db", "path to the outcome database")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(statsCommand())
	root.AddCommand(clearCommand())
	return root
}

func openStore() (*outcomes.SQLiteStore, error) {
	store, err := outcomes.OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening outcome database %s: %w", dbPath, err)
	}
	return store, nil
}

func statsCommand() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show action success statistics for a game",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			stats, err := store.Stats(ctx, gameID)
			if err != nil {
				return fmt.Errorf("reading stats: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), stats.Digest())

			records, err := store.AllFor(ctx, gameID)
			if err != nil {
				return fmt.Errorf("reading history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d actions recorded\n", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game identifier")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}

func clearCommand() *cobra.Command {
	var gameID string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the recorded history for a game",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if err := store.Clear(ctx, gameID); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			log.Info("history cleared", "game_id", gameID, "db", dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game identifier")
	_ = cmd.MarkFlagRequired("game")
	return cmd
}
