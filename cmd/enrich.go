package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/justlist/facility-finder/internal/model"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich existing facility records without a new search",
	Long:  "Enriches facilities supplied as a JSON file (or a single record via flags) against all configured sources and prints the outcomes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("name")
		website, _ := cmd.Flags().GetString("website")
		location, _ := cmd.Flags().GetString("location")

		facilities, err := loadFacilities(file, name, website)
		if err != nil {
			return err
		}
		if len(facilities) == 0 {
			return eris.New("nothing to enrich: pass --file or --name")
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		outcomes, err := p.Enrich(ctx, facilities, location)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	},
}

func init() {
	enrichCmd.Flags().String("file", "", "path to a JSON array of facility records")
	enrichCmd.Flags().String("name", "", "facility name for a single ad-hoc record")
	enrichCmd.Flags().String("website", "", "facility website for a single ad-hoc record")
	enrichCmd.Flags().String("location", "", "location hint for secondary source lookups (e.g. \"Valletta, Malta\")")
	rootCmd.AddCommand(enrichCmd)
}

// loadFacilities reads facility records from a JSON file, or builds a
// single record from the name/website flags.
func loadFacilities(file, name, website string) ([]*model.Facility, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, eris.Wrap(err, "read facilities file")
		}
		var facilities []*model.Facility
		if err := json.Unmarshal(data, &facilities); err != nil {
			return nil, eris.Wrap(err, "parse facilities file")
		}
		return facilities, nil
	}

	if name == "" {
		return nil, nil
	}

	return []*model.Facility{{Name: name, Website: website}}, nil
}
