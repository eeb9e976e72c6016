package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justlist/facility-finder/internal/model"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for facilities and enrich the results",
	Long:  "Runs a geo text search for the given place type and location, enriches every facility found, and persists the run with its leads.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		placeType, _ := cmd.Flags().GetString("type")
		city, _ := cmd.Flags().GetString("city")
		country, _ := cmd.Flags().GetString("country")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		asJSON, _ := cmd.Flags().GetBool("json")

		query := model.SearchQuery{
			PlaceType:  placeType,
			City:       city,
			Country:    country,
			MaxResults: maxResults,
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		result, err := p.Run(ctx, query)
		if err != nil {
			return eris.Wrap(err, "search")
		}

		zap.L().Info("search complete",
			zap.String("run_id", result.Run.ID),
			zap.Int("facilities", len(result.Outcomes)),
		)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		formatOutcomes(os.Stdout, result.Outcomes)
		fmt.Fprintf(os.Stderr, "\nRun %s saved with %d leads.\n", result.Run.ID, len(result.Outcomes))
		return nil
	},
}

func init() {
	searchCmd.Flags().String("type", "", "place type to search for (e.g. gym, pharmacy)")
	searchCmd.Flags().String("city", "", "city to search in")
	searchCmd.Flags().String("country", "", "country to search in")
	searchCmd.Flags().Int("max-results", 0, "max facilities to process (default from query)")
	searchCmd.Flags().Bool("json", false, "print the full result as JSON")
	_ = searchCmd.MarkFlagRequired("type")
	_ = searchCmd.MarkFlagRequired("city")
	_ = searchCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(searchCmd)
}

// formatOutcomes writes a tabular summary of enriched facilities to out.
func formatOutcomes(out io.Writer, outcomes []model.EnrichmentOutcome) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPHONE\tWEBSITE\tRATING\tTIER\tCONFIDENCE\tSOURCES")
	_, _ = fmt.Fprintln(w, "----\t-----\t-------\t------\t----\t----------\t-------")

	for _, o := range outcomes {
		name := o.Facility.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}

		rating := ""
		if o.Facility.Rating > 0 {
			rating = fmt.Sprintf("%.1f", o.Facility.Rating)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\n",
			name,
			o.Facility.Phone,
			o.Facility.Website,
			rating,
			o.QualityTier,
			o.ConfidenceScore,
			len(o.SourcesUsed),
		)
	}
	_ = w.Flush()
}
