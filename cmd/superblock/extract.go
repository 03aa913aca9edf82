package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkuehnel/superblock/internal/features"
	"github.com/mkuehnel/superblock/internal/fixture"
	"github.com/mkuehnel/superblock/internal/hazard"
)

var (
	extractInput string
	extractCSV   string
)

var extractFeaturesCmd = &cobra.Command{
	Use:   "extract-features",
	Short: "Emit one CSV feature row per two-way conditional branch",
	RunE:  runExtractFeatures,
}

func init() {
	extractFeaturesCmd.Flags().StringVar(&extractInput, "input", "", "path to a YAML function fixture (required)")
	extractFeaturesCmd.Flags().StringVar(&extractCSV, "csv", "", "path to the CSV file to append rows to (required)")
	_ = extractFeaturesCmd.MarkFlagRequired("input")
	_ = extractFeaturesCmd.MarkFlagRequired("csv")
}

func runExtractFeatures(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	f, err := fixture.Load(extractInput)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}

	sink, err := features.OpenSink(extractCSV)
	if err != nil {
		return fmt.Errorf("opening csv sink: %w", err)
	}
	defer sink.Close()

	info := hazard.Classify(f)
	errs := features.Extract(f, info, sink)
	for _, e := range errs {
		logger.Warnf("%s: row write failed: %v", f.Name, e)
	}

	logger.Infof("%s: wrote %d feature rows to %s", f.Name, len(info.CondBranches)-len(errs), extractCSV)
	return nil
}
