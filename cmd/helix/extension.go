package main

import (
	"github.com/spf13/cobra"

	"Helix/internal/calc/report"
	"Helix/internal/calc/spring"
)

var extensionCmd = &cobra.Command{
	Use:   "extension <design.yaml>",
	Short: "Evaluate a helical extension spring",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtension,
}

func init() {
	rootCmd.AddCommand(extensionCmd)
}

func runExtension(cmd *cobra.Command, args []string) error {
	var in spring.ExtensionInput
	if err := readDesign(args[0], &in); err != nil {
		return err
	}
	res, err := spring.CalculateExtension(in)
	if err != nil {
		return err
	}
	if err := record(cmd.Context(), "spring/extension", in, res); err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), report.Input{Extension: &in}, res)
}
