package agent

import (
	"context"
	"fmt"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Analyzer wraps an external sensitivity analyzer and annotates parameter
// atoms with sensitivity scores.
type Analyzer struct {
	base
}

func (a *Analyzer) ProcessTask(ctx context.Context, task *domain.Task) (*domain.TaskResult, error) {
	model := paramString(task, "model_file")
	if model == "" {
		return nil, fmt.Errorf("%w: analysis task %q missing model_file", domain.ErrValidation, task.ID)
	}
	analysis := paramString(task, "analysis_type")
	if analysis == "" {
		analysis = "sensitivity"
	}

	raw, err := a.runTool(ctx, []string{model, "--analysis", analysis})
	if err != nil {
		return nil, err
	}
	out, err := parseOutput(raw)
	if err != nil {
		return nil, err
	}

	for name, score := range out.Sensitivity {
		a.annotateParameter(name, score)
	}

	a.logger.Info("analysis complete",
		zap.String("task_id", task.ID),
		zap.String("analysis", analysis),
		zap.Int("parameters_scored", len(out.Sensitivity)))
	return out.result(), nil
}

// annotateParameter attaches a sensitivity score to an existing parameter
// atom. The zero-confidence write leaves the atom's truth value untouched
// under revision.
func (a *Analyzer) annotateParameter(name string, score float64) {
	if _, err := a.graph.GetAtom(domain.AtomParameter, name); err != nil {
		return
	}
	_, _ = a.graph.AddAtom(&domain.Atom{
		Type:     domain.AtomParameter,
		Name:     name,
		Truth:    domain.TruthValue{},
		Metadata: map[string]any{"sensitivity": score},
	})
}
