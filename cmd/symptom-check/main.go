package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"symptom-checker/internal/cli"
	"symptom-checker/internal/config"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(config.Load())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "symptom-check",
		Short: "AI-assisted symptom checker",
		Long: `symptom-check sends a description of your symptoms to the diagnosis server
and prints probable conditions and next steps. It is not medical advice.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		cli.NewCheckCmd(cfg),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "symptom-check version %s\n", version)
		},
	}
}
