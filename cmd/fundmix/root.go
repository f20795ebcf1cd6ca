package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/fundmix/internal/app"
	"github.com/bobmcallan/fundmix/internal/common"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

// newRootCmd builds the fundmix command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "fundmix",
		Short: "Fund allocation breakdowns from CSV",
		Long: `fundmix reads an allocation CSV with Fund, ChartType, Category and Value
columns and shows, per fund, one breakdown per chart type with categories
sorted by value and colored by the chart type's color policy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to fundmix.toml (default: FUNDMIX_CONFIG or config/fundmix.toml)")

	root.AddCommand(
		newFundsCmd(opts),
		newBreakdownCmd(opts),
		newSummaryCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadFile initializes the app and ingests path into it.
func loadFile(ctx context.Context, opts *rootOptions, path string) (*app.App, error) {
	a, err := app.NewApp(opts.configPath)
	if err != nil {
		return nil, err
	}
	if _, err := a.IngestFile(ctx, path); err != nil {
		return nil, err
	}
	return a, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "fundmix "+common.GetFullVersion())
			return err
		},
	}
}
