package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/cli"
	"github.com/cloo-solutions/scratch/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "scratch",
		Short: "Scratch CLI - a simple note taking app",
		Long: `Scratch CLI lists, searches and edits your notes.

Environment variables:
  SCRATCH_API_KEY            API key for authentication
  SCRATCH_API_URL            API base URL (default: http://localhost:8080)
  SCRATCH_BULK_CONCURRENCY   Cap on parallel note updates during bulk replace (default: unlimited)
  SCRATCH_TIME_FORMAT        Go layout for creation times
  SCRATCH_TIME_ZONE          IANA zone for creation times (default: local)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.BulkReplaceCmd())
	rootCmd.AddCommand(client.BrowseCmd())
	rootCmd.AddCommand(client.AuthCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
