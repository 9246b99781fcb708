package main

import (
	"github.com/spf13/cobra"

	"Helix/internal/calc/report"
	"Helix/internal/calc/spring"
)

var pushCmd = &cobra.Command{
	Use:   "push <design.yaml>",
	Short: "Evaluate a helical compression spring",
	Long: `Evaluate a helical compression spring.

Example design file:
  max_force_n: 575
  wire_diameter_mm: 3.4
  spring_index: 10
  end_type: squared and ground
  rate_n_per_mm: 6.189
  material: {ap_mpa: 2211, m: 0.145, shear_yield_pct: 45, shear_modulus_mpa: 81700}
  safety_factor: 1.5`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	var in spring.PushInput
	if err := readDesign(args[0], &in); err != nil {
		return err
	}
	res, err := spring.CalculatePush(in)
	if err != nil {
		return err
	}
	if err := record(cmd.Context(), "spring/push", in, res); err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), report.Input{Push: &in}, res)
}
