// Command helix runs the spring, shaft and fastener calculators on YAML
// design files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"Helix/internal/calc/report"
	"Helix/internal/config"
	"Helix/internal/repo"
	"Helix/internal/session"
)

// localUser owns everything the CLI records.
var localUser = session.User{ID: "local", Login: "cli"}

var (
	verbose bool
	output  string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "helix",
	Short: "Spring, shaft and fastener fatigue calculator",
	Long: `helix evaluates mechanical designs described in YAML files.

Commands:
  push       Helical compression spring
  extension  Helical extension spring
  miner      Cumulative damage of a duty cycle (YAML or --xlsx)
  report     Render a PDF report for one calculation
  history    List calculations recorded with --db

Any quantity in a design file may be a number or a symbol name; symbols
stay unevaluated and propagate through the results.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(config.NewLogger(cmd.ErrOrStderr(), level))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log intermediate values")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite file that records every calculation")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readDesign decodes the YAML file at path into v.
func readDesign(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// openHistory opens the --db store, or returns nil when the flag is unset.
func openHistory() (*repo.Store, error) {
	if dbPath == "" {
		return nil, nil
	}
	return repo.Open("sqlite", dbPath)
}

// record saves one calculation when --db is set.
func record(ctx context.Context, kind string, input, result any) error {
	store, err := openHistory()
	if err != nil || store == nil {
		return err
	}
	defer store.Close()
	rec := &repo.Recorder{Repo: store}
	rec.Record(session.With(ctx, localUser), kind, input, result)
	return nil
}

// emit writes the result as JSON, or the report sections of in as a table.
func emit(w io.Writer, in report.Input, result any) error {
	switch output {
	case "json":
		return emitJSON(w, result)
	case "table":
		sections, err := report.Sections(in)
		if err != nil {
			return err
		}
		return printSections(w, sections)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func emitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSections(w io.Writer, sections []report.Section) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, s.Title)
		for _, r := range s.Rows {
			fmt.Fprintf(tw, "  %s\t%s\n", r.Label, r.Value)
		}
	}
	return tw.Flush()
}
