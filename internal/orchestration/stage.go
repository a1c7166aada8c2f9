package orchestration

import "fmt"

// Stage selects which part of the deployment workflow to run.
type Stage string

const (
	// StageInfra provisions cloud resources and writes the ledger.
	StageInfra Stage = "infra"
	// StageApp deploys containers onto already-provisioned instances.
	StageApp Stage = "app"
	// StageAll runs infra followed by app.
	StageAll Stage = "all"
)

// ParseStage validates a stage name from the CLI.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageInfra, StageApp, StageAll:
		return Stage(s), nil
	default:
		return "", fmt.Errorf("invalid stage %q, must be one of infra, app, all", s)
	}
}
