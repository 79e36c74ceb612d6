package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"multidrop-route-service/internal/adapters/cache"
	"multidrop-route-service/internal/adapters/distance"
	"multidrop-route-service/internal/api/dto"
	"multidrop-route-service/internal/config"
	"multidrop-route-service/internal/platform/logging"
	"multidrop-route-service/internal/services"
)

var (
	requestFile string
	live        bool
)

// quoteCmd prices a request file
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Optimize and price a multi-drop request",
	Long: `Read a multi-drop request in the HTTP API's JSON format and print the quote.

With --live, travel times and missing coordinates come from OpenRouteService
(ORS_API_KEY must be set). Otherwise straight-line estimates are used.

Examples:
  routecli quote --file request.json
  cat request.json | routecli quote --file - --format text`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&requestFile, "file", "", "request JSON file, or - for stdin")
	quoteCmd.Flags().BoolVar(&live, "live", false, "use OpenRouteService for travel times and geocoding")
	_ = quoteCmd.MarkFlagRequired("file")
}

func runQuote(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := readRequest(cmd.InOrStdin(), requestFile)
	if err != nil {
		return err
	}

	svcReq, err := req.ToQuoteRequest()
	if err != nil {
		return err
	}

	pricing, err := loadPricing()
	if err != nil {
		return err
	}

	var opts []services.QuoteOption
	if live {
		config.LoadEnv()
		key := config.Get("ORS_API_KEY", "")
		if key == "" {
			return fmt.Errorf("--live requires ORS_API_KEY")
		}
		ors, err := distance.NewORSClient(key, cache.NewMemoryTravelCache(1000, time.Hour), nil)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithTravelEstimator(ors), services.WithGeocoder(ors))

		log := logging.New(logging.Config{Level: config.Get("LOG_LEVEL", "warn"), Format: "console"})
		defer func() { _ = log.Sync() }()
		ctx = logging.WithContext(ctx, log.With(zap.String("cmd", "quote")))
	}

	start := time.Now()
	q, err := services.NewQuoteService(pricing, opts...).Quote(ctx, svcReq)
	if err != nil {
		return err
	}

	res := dto.NewQuoteResponse(q, dto.MetadataResponse{
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Timestamp:        time.Now().UTC(),
		OptimizedFor:     string(svcReq.Options.OptimizeFor),
	})

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "text":
		return printQuote(out, res)
	default:
		return fmt.Errorf("unknown format %q (want json or text)", outputFormat)
	}
}

func readRequest(stdin io.Reader, path string) (dto.MultiDropRouteRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return dto.MultiDropRouteRequest{}, fmt.Errorf("read request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req dto.MultiDropRouteRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return dto.MultiDropRouteRequest{}, fmt.Errorf("read request: invalid json: %w", err)
	}
	return req, nil
}

func printQuote(out io.Writer, res dto.QuoteResponse) error {
	r, p := res.Route, res.Pricing

	fmt.Fprintf(out, "Quote %s\n", res.QuoteID)
	fmt.Fprintf(out, "%s, %s, %d stops, efficiency %s (%s)\n\n",
		r.Summary.TotalDistance, r.Summary.TotalDuration, r.TotalStops,
		r.Summary.EfficiencyScore, res.Analytics.Efficiency.Rating)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEG\tROUTE\tKM\tMIN\tARRIVE\tCOST")
	for i, l := range r.Legs {
		cost := ""
		if i < len(p.PerLegDetails) {
			cost = p.PerLegDetails[i].Costs.Total
		}
		fmt.Fprintf(tw, "%d\t%s → %s\t%.1f\t%.0f\t%s\t%s\n",
			l.LegIndex+1, l.From, l.To, l.DistanceKm, l.DurationMinutes, l.ArrivalTime, cost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b := p.Breakdown
	fmt.Fprintf(out, "\nLeg costs       %s\n", b.LegCostsFormatted)
	fmt.Fprintf(out, "Stop surcharges %s\n", b.StopSurchargesFormatted)
	fmt.Fprintf(out, "Discount       -%s\n", b.OptimizationDiscountFormatted)
	fmt.Fprintf(out, "Subtotal        %s\n", p.SubtotalFormatted)
	fmt.Fprintf(out, "VAT             %s\n", p.VATFormatted)
	fmt.Fprintf(out, "Total           %s\n", p.TotalAmountFormatted)

	for _, w := range res.Logistics.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if len(res.Logistics.Recommendations) > 0 {
		fmt.Fprintf(out, "\n%s\n", strings.Join(res.Logistics.Recommendations, "\n"))
	}
	return nil
}
