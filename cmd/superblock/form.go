package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkuehnel/superblock/internal/config"
	"github.com/mkuehnel/superblock/internal/diag"
	"github.com/mkuehnel/superblock/internal/duplicate"
	"github.com/mkuehnel/superblock/internal/fixture"
	"github.com/mkuehnel/superblock/internal/hazard"
	"github.com/mkuehnel/superblock/internal/predict"
	"github.com/mkuehnel/superblock/internal/trace"
)

var (
	formInput      string
	formVariant    string
	formProbThresh float64
	formPredThresh float64
	formSeed       uint64
	formSarifOut   string
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Form traces through a function and duplicate their tails",
	RunE:  runForm,
}

func init() {
	formCmd.Flags().StringVar(&formInput, "input", "", "path to a YAML function fixture (required)")
	formCmd.Flags().StringVar(&formVariant, "variant", "profile", "trace-growth variant: profile, random, heuristic")
	formCmd.Flags().Float64Var(&formProbThresh, "prob-threshold", 0.60, "successor probability threshold (profile variant)")
	formCmd.Flags().Float64Var(&formPredThresh, "pred-threshold", 0.60, "predecessor weight threshold (profile variant)")
	formCmd.Flags().Uint64Var(&formSeed, "seed", 1, "RNG seed (random/heuristic variants)")
	formCmd.Flags().StringVar(&formSarifOut, "sarif", "", "write a SARIF report to this path")
	_ = formCmd.MarkFlagRequired("input")
}

func runForm(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	variant, ok := config.ParseVariant(formVariant)
	if !ok {
		return fmt.Errorf("unknown variant %q", formVariant)
	}

	f, err := fixture.Load(formInput)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}

	cfg := config.New(
		config.WithVariant(variant),
		config.WithProbabilityThreshold(formProbThresh),
		config.WithPredecessorThreshold(formPredThresh),
		config.WithRNGSeed(formSeed),
	)

	info := hazard.Classify(f)
	predictions := predict.Predict(f, info)

	var stats predict.Stats
	stats.Record(f, info.CondBranches, predictions)
	logger.Infof("%s: %d conditional branches, coverage %.2f, accuracy %.2f",
		f.Name, stats.ConditionalCount, stats.Coverage(), stats.Accuracy())

	result := trace.Form(f, info, predictions, cfg, formSeed)
	logger.DumpTraces(f.Name, result)

	report := diag.NewReport()
	changed, dupErr := duplicate.Duplicate(f, result)
	var malformed *duplicate.MalformedTerminatorError
	if errors.As(dupErr, &malformed) {
		report.AddMalformedTerminator(f.Name, malformed.Block.String())
		logger.Warnf("%s: %v", f.Name, dupErr)
	} else if dupErr != nil {
		return dupErr
	}
	logger.Infof("%s: %d traces, tails duplicated=%v", f.Name, len(result.Traces), changed)

	report.AddSummary(f.Name, stats.ConditionalCount, stats.HazardCount+stats.PathCount, stats.Accuracy())

	if formSarifOut != "" {
		out, err := os.Create(formSarifOut)
		if err != nil {
			return fmt.Errorf("opening sarif output: %w", err)
		}
		defer out.Close()
		if err := report.Write(out); err != nil {
			return fmt.Errorf("writing sarif report: %w", err)
		}
	}

	return nil
}
