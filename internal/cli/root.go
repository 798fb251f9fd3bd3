// Package cli is the command-line front end: the same analysis the API
// serves, run once against local study tables and record cards.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/stwalsh4118/taxappeal/internal/config"
	"github.com/stwalsh4118/taxappeal/internal/dataset"
	"github.com/stwalsh4118/taxappeal/internal/evidence"
	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/observability"
	"github.com/stwalsh4118/taxappeal/internal/services"
)

// BundleLoader reads the study tables for years from dir.
type BundleLoader func(dir string, years []int) (*dataset.Bundle, error)

// Deps are the collaborators the commands run against.
type Deps struct {
	Out        io.Writer
	Log        *logger.Logger
	Config     *config.Config
	LoadBundle BundleLoader
	Extractor  services.RecordExtractor
	Clock      clockwork.Clock
}

// app holds the flag values and the lazily loaded bundle shared by the
// subcommands of one invocation.
type app struct {
	deps    Deps
	dataDir string
	years   []int
	bundle  *dataset.Bundle
	metrics *observability.Metrics
}

// NewRootCmd builds the appeal command tree.
func NewRootCmd(d Deps) *cobra.Command {
	a := &app{deps: d, metrics: observability.NewUnregisteredMetrics()}

	cmd := &cobra.Command{
		Use:           "appeal",
		Short:         "Analyse a residential assessment and draft a Board of Review petition",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(d.Out)

	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", d.Config.Data.Dir, "Directory holding the yearly study tables")
	cmd.PersistentFlags().IntSliceVar(&a.years, "years", d.Config.Data.StudyYears, "Study years to load")

	cmd.AddCommand(
		newAreasCmd(a),
		newExtractCmd(a),
		newAnalyzeCmd(a),
	)
	return cmd
}

// Execute runs the command tree and reports a failure on stderr.
func Execute(d Deps) int {
	if err := NewRootCmd(d).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadBundle reads the study tables once per invocation.
func (a *app) loadBundle() (*dataset.Bundle, error) {
	if a.bundle != nil {
		return a.bundle, nil
	}
	b, err := a.deps.LoadBundle(a.dataDir, a.years)
	if err != nil {
		return nil, fmt.Errorf("failed to load study data from %s: %w", a.dataDir, err)
	}
	a.bundle = b
	return b, nil
}

func (a *app) appealService() (services.AppealService, error) {
	b, err := a.loadBundle()
	if err != nil {
		return nil, err
	}
	return services.NewAppealService(evidence.NewAggregator(b), nil, a.deps.Clock, a.metrics, a.deps.Log), nil
}

func (a *app) recordService() (services.RecordService, error) {
	b, err := a.loadBundle()
	if err != nil {
		return nil, err
	}
	return services.NewRecordService(a.deps.Extractor, b, a.deps.Clock, a.metrics, a.deps.Log), nil
}
