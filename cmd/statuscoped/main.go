package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/statuscope-ai/statuscope/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statuscoped",
		Short: "Statuscope knowledge engine",
		Long:  "Statuscope daemon for syncing organization knowledge and serving retrieval queries",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.StatsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
