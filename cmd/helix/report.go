package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"Helix/internal/calc/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report <report.yaml>",
	Short: "Render a calculation as a PDF report",
	Long: `Render a calculation as a PDF report.

The file names the document (project, author, title, notes) and holds exactly
one of push, extension, shaft or miner with the same fields as the matching
command.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "PDF path (default: input name with .pdf)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	var in report.Input
	if err := readDesign(args[0], &in); err != nil {
		return err
	}
	out := reportOut
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(args[0], ".yaml"), ".yml") + ".pdf"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := report.Render(f, in, time.Now()); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, humanize.Bytes(uint64(info.Size())))
	return nil
}
