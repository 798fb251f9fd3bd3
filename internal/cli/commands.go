package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

func newAreasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List the assessment areas in the study data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.appealService()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tSUBDIVISION\tECF\tSALES COVERAGE")
			for _, area := range svc.ListAreas(cmd.Context()) {
				ecf := "-"
				if area.LatestCostFactor != nil {
					ecf = fmt.Sprintf("%.3f", *area.LatestCostFactor)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", area.Code, area.Subdivision, ecf, area.Coverage)
			}
			return tw.Flush()
		},
	}
}

func newExtractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract RECORD_CARD",
		Short: "Read a record card and print the property as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.readRecord(cmd, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

// analyzeCmd holds the analyze flags.
type analyzeCmd struct {
	app    *app
	area   string
	sev    int64
	record string
	out    string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	ac := &analyzeCmd{app: a}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Value a property against its area and write the petition",
		Args:  cobra.NoArgs,
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.area, "area", "", "Area code, e.g. AR-4 (defaults to the record card's)")
	cmd.Flags().Int64Var(&ac.sev, "sev", 0, "Current assessed value (defaults to the record card's)")
	cmd.Flags().StringVar(&ac.record, "record", "", "Path to the property record card PDF")
	cmd.Flags().StringVar(&ac.out, "out", "", "Write the petition to this file instead of stdout")

	return cmd
}

func (ac *analyzeCmd) run(cmd *cobra.Command, args []string) error {
	if ac.record == "" && (ac.area == "" || ac.sev == 0) {
		return errors.New("either --record or both --area and --sev are required")
	}

	var prop *models.PropertyRecord
	if ac.record != "" {
		result, err := ac.app.readRecord(cmd, ac.record)
		if err != nil {
			return err
		}
		prop = &result.Record
	}

	svc, err := ac.app.appealService()
	if err != nil {
		return err
	}

	analysis, err := svc.Analyze(cmd.Context(), services.AnalyzeRequest{
		Property:      prop,
		AreaCode:      ac.area,
		AssessedValue: ac.sev,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ac.out == "" {
		_, err := fmt.Fprint(out, analysis.Petition)
		return err
	}

	if err := os.WriteFile(ac.out, []byte(analysis.Petition), 0o644); err != nil {
		return fmt.Errorf("failed to write petition: %w", err)
	}

	v := analysis.Verdict
	verdict := "appeal not recommended"
	if v.AppealRecommended {
		verdict = "appeal recommended"
	}
	_, err = fmt.Fprintf(out, "%s: SEV %d -> %d, %s. Written to %s\n",
		analysis.Report.Evidence.AreaCode, v.AssessedValue, v.RecommendedSEV, verdict, ac.out)
	return err
}

// readRecord extracts the record card at path.
func (a *app) readRecord(cmd *cobra.Command, path string) (*services.RecordResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record card: %w", err)
	}

	svc, err := a.recordService()
	if err != nil {
		return nil, err
	}
	result, err := svc.Extract(cmd.Context(), data)
	if err != nil {
		return nil, err
	}
	if !result.AreaRecognized {
		a.deps.Log.Warn("Record card area is not in the study data; pass --area", map[string]interface{}{
			"area_code": result.Record.AreaCode,
		})
	}
	return result, nil
}
