package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/cli"
	"github.com/cloo-solutions/scratch/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scratchd",
		Short: "Scratch notes daemon and admin CLI",
		Long:  "Scratch daemon for running the notes API server and managing users and API keys",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.UserCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
