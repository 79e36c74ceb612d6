// Package cmd provides the CLI commands for routecli.
package cmd

import (
	"github.com/spf13/cobra"

	"multidrop-route-service/internal/config"
)

var (
	pricingFile  string
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "routecli",
	Short: "Optimize and price multi-drop delivery routes",
	Long: `routecli orders the drops of a delivery, prices every leg and reports
route analytics without running the HTTP server.

Examples:
  routecli quote --file request.json
  routecli quote --file request.json --format text
  routecli vehicles --pricing pricing.yaml`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&pricingFile, "pricing", "", "pricing YAML file (default is the built-in GBP policy)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, text)")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(vehiclesCmd)
}

func loadPricing() (config.PricingConfig, error) {
	if pricingFile == "" {
		return config.DefaultPricing(), nil
	}
	return config.LoadPricing(pricingFile)
}
