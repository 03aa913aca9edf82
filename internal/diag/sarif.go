package diag

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/google/uuid"
	sarif "github.com/owenrumney/go-sarif/v2/sarif"
)

// Report accumulates one run's diagnostics — MalformedTerminator
// failures and per-function summaries — into a SARIF 2.1.0 document,
// mirroring the shape the pack's existing SARIF formatter builds
// (sarif.New, NewRunWithInformationURI, AddRule, CreateResultForRule).
type Report struct {
	runID string
	run   *sarif.Run
	rules map[string]bool
}

// NewReport starts a fresh report; RunID returns the uuid stamped on
// it, so repeated invocations over the same function are distinguishable
// in logs. The uuid is not written into the emitted SARIF document.
func NewReport() *Report {
	run := sarif.NewRunWithInformationURI("superblock", "https://github.com/mkuehnel/superblock")
	return &Report{
		runID: uuid.NewString(),
		run:   run,
		rules: make(map[string]bool),
	}
}

// RunID returns the uuid identifying this report's run.
func (r *Report) RunID() string { return r.runID }

// AddMalformedTerminator records a MalformedTerminator failure (§7) for
// funcName at blockName.
func (r *Report) AddMalformedTerminator(funcName, blockName string) {
	r.addRuleOnce("malformed-terminator", "Malformed terminator", "error")
	r.run.CreateResultForRule("malformed-terminator").
		WithMessage(sarif.NewTextMessage("block " + blockName + " has a malformed terminator for tail duplication")).
		WithLevel("error").
		AddLocation(fileLocation(funcName))
}

// AddSummary records a per-function informational result: coverage and
// accuracy figures from a predict.Stats run.
func (r *Report) AddSummary(funcName string, conditionalCount, covered int, accuracy float64) {
	r.addRuleOnce("prediction-summary", "Prediction coverage summary", "note")
	msg := sarif.NewTextMessage(
		"conditional branches: " + strconv.Itoa(conditionalCount) +
			", covered: " + strconv.Itoa(covered) +
			", accuracy: " + strconv.FormatFloat(accuracy, 'f', 3, 64))
	r.run.CreateResultForRule("prediction-summary").
		WithMessage(msg).
		WithLevel("note").
		AddLocation(fileLocation(funcName))
}

func (r *Report) addRuleOnce(id, name, level string) {
	if r.rules[id] {
		return
	}
	r.rules[id] = true
	r.run.AddRule(id).
		WithName(name).
		WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(level))
}

func fileLocation(funcName string) *sarif.Location {
	return sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(
					sarif.NewArtifactLocation().WithUri(funcName),
				),
		)
}

// Write encodes the accumulated report as indented JSON to w.
func (r *Report) Write(w io.Writer) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}
	report.AddRun(r.run)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
