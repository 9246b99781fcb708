package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Helix/internal/calc/fatigue"
	"Helix/internal/calc/premium/importer"
	"Helix/internal/calc/report"
)

var (
	minerXLSX    string
	minerSut     float64
	minerSe      float64
	minerAltMean bool
	minerFreq    bool
)

var minerCmd = &cobra.Command{
	Use:   "miner [duty.yaml]",
	Short: "Estimate fatigue life of a duty cycle with Miner's rule",
	Long: `Estimate fatigue life of a duty cycle with Miner's rule.

The duty comes from a YAML file (groups, sut_mpa, se_mpa, ...) or from the
first sheet of a workbook given with --xlsx, one [repetition, a, b] row per
group. Strengths and flags passed on the command line apply to workbooks.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMiner,
}

func init() {
	minerCmd.Flags().StringVar(&minerXLSX, "xlsx", "", "Read duty groups from a workbook")
	minerCmd.Flags().Float64Var(&minerSut, "sut", 0, "Ultimate tensile strength, MPa")
	minerCmd.Flags().Float64Var(&minerSe, "se", 0, "Endurance limit, MPa")
	minerCmd.Flags().BoolVar(&minerAltMean, "alt-mean", false, "Rows hold (alternating, mean) instead of (max, min)")
	minerCmd.Flags().BoolVar(&minerFreq, "freq", false, "Repetitions are frequencies in Hz")
	rootCmd.AddCommand(minerCmd)
}

func runMiner(cmd *cobra.Command, args []string) error {
	in, err := minerInput(args)
	if err != nil {
		return err
	}
	res, err := fatigue.Miner(in)
	if err != nil {
		return err
	}
	if err := record(cmd.Context(), "miner", in, res); err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), report.Input{Miner: &in}, res)
}

func minerInput(args []string) (fatigue.MinerInput, error) {
	var in fatigue.MinerInput
	switch {
	case minerXLSX != "" && len(args) > 0:
		return in, fmt.Errorf("give either a duty file or --xlsx, not both")
	case minerXLSX != "":
		f, err := os.Open(minerXLSX)
		if err != nil {
			return in, err
		}
		defer f.Close()
		groups, err := importer.ReadDuty(f)
		if err != nil {
			return in, fmt.Errorf("%s: %w", minerXLSX, err)
		}
		in.Groups = groups
	case len(args) == 1:
		if err := readDesign(args[0], &in); err != nil {
			return in, err
		}
	default:
		return in, fmt.Errorf("a duty file or --xlsx is required")
	}
	if minerSut != 0 {
		in.SutMPa = minerSut
	}
	if minerSe != 0 {
		in.SeMPa = minerSe
	}
	in.AltMean = in.AltMean || minerAltMean
	in.Freq = in.Freq || minerFreq
	in.Verbose = in.Verbose || verbose
	return in, nil
}
