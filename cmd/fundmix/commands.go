package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/fundmix/internal/services/report"
)

// newFundsCmd lists the funds of a CSV file in first-appearance order.
func newFundsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "funds <file.csv>",
		Short: "List the funds in an allocation CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadFile(ctx, opts, args[0])
			if err != nil {
				return err
			}

			funds := a.BreakdownService.ListFunds(ctx)
			out := cmd.OutOrStdout()
			if asJSON {
				if funds == nil {
					funds = []string{}
				}
				return writeJSON(out, funds)
			}
			for _, f := range funds {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print funds as a JSON array")
	return cmd
}

// newBreakdownCmd prints one fund's breakdowns.
func newBreakdownCmd(opts *rootOptions) *cobra.Command {
	var (
		fund   string
		format string
		raw    bool
		style  string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "breakdown <file.csv>",
		Short: "Show the breakdowns of one fund",
		Long: `Show every chart type of one fund with categories sorted by value.

Examples:
  fundmix breakdown funds.csv
  fundmix breakdown funds.csv --fund "Global Growth" --format markdown
  fundmix breakdown funds.csv --format markdown --raw > legend.md
  fundmix breakdown funds.csv --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := report.ParseFormat(format); err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := loadFile(ctx, opts, args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("fund") {
				a.BreakdownService.SelectFund(ctx, fund)
			}

			rep, err := a.ReportService.GenerateReport(ctx, "", report.Options{
				Format: format,
				Raw:    raw,
				Style:  style,
				Width:  width,
			})
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), rep.Body)
			return err
		},
	}
	cmd.Flags().StringVar(&fund, "fund", "", "Fund to show (default: first fund in the file)")
	cmd.Flags().StringVar(&format, "format", report.FormatTable, "Output format (table|markdown|json)")
	cmd.Flags().BoolVar(&raw, "raw", false, "With --format markdown, print markdown source")
	cmd.Flags().StringVar(&style, "style", "", "Markdown style (dark|light|notty), default detects the terminal")
	cmd.Flags().IntVar(&width, "width", report.DefaultWidth, "Word wrap width for rendered markdown")
	return cmd
}

// newSummaryCmd reports what an ingestion of the file kept and dropped.
func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary <file.csv>",
		Short: "Summarize rows, entries and dropped values of an allocation CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadFile(ctx, opts, args[0])
			if err != nil {
				return err
			}
			s := a.BreakdownService.LastIngestion(ctx)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, s)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Source\t%s\n", s.Source)
			fmt.Fprintf(tw, "Rows\t%d\n", s.Rows)
			fmt.Fprintf(tw, "Entries\t%d\n", s.Entries)
			fmt.Fprintf(tw, "Dropped (empty)\t%d\n", s.DroppedEmpty)
			fmt.Fprintf(tw, "Dropped (invalid)\t%d\n", s.DroppedInvalid)
			fmt.Fprintf(tw, "Funds\t%d\n", len(s.Funds))
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
