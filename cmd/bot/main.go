package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"happyBot/internal/app/runtime"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts runtime.Options

	rootCmd := &cobra.Command{
		Use:          "happybot",
		Short:        "Chat bot with role-gated commands and deferred restarts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv files to load before reading the environment")
	rootCmd.Flags().StringVar(&opts.RolesFile, "roles", "", "YAML role table (defaults are used when empty)")
	rootCmd.Flags().StringVar(&opts.DatabasePath, "db", "", "SQLite database path (overrides BOT_DATABASE_PATH)")

	return rootCmd
}

func run(parent context.Context, opts runtime.Options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := runtime.Start(ctx, opts)
	if err != nil {
		log.Printf("bot: start failed: %v", err)
		return err
	}

	log.Println("bot: running, press Ctrl+C to stop")
	select {
	case <-ctx.Done():
	case <-rt.Done():
	}

	if rt.Terminating() {
		// The restart terminator exits with the supervisor code; returning
		// here would race it with exit status 0.
		log.Println("bot: restart in progress, waiting for the terminator")
		select {}
	}

	if err := rt.Stop(); err != nil {
		log.Printf("bot: shutdown: %v", err)
	}
	log.Println("bot: stopped")
	return nil
}
