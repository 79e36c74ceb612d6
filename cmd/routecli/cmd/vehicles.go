package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// vehiclesCmd lists the configured vehicle classes
var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "List vehicle classes and their capacities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pricing, err := loadPricing()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if outputFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(pricing.Vehicles)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tNAME\tVOLUME M3\tWEIGHT KG\tITEMS\tCOST")
		for _, v := range pricing.Vehicles {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.0f\t%d\tx%.2f\n",
				v.Type, v.Name, v.MaxVolumeM3, v.MaxWeightKg, v.MaxItems, v.CostMultiplier)
		}
		return tw.Flush()
	},
}
