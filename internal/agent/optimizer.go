package agent

import (
	"context"
	"fmt"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Optimizer wraps an external parameter optimizer and records suggested
// parameter values back onto the parameter atoms.
type Optimizer struct {
	base
}

func (o *Optimizer) ProcessTask(ctx context.Context, task *domain.Task) (*domain.TaskResult, error) {
	model := paramString(task, "model_file")
	if model == "" {
		return nil, fmt.Errorf("%w: optimization task %q missing model_file", domain.ErrValidation, task.ID)
	}
	objective := paramString(task, "objective")
	if objective == "" {
		objective = "maximize_probability"
	}

	raw, err := o.runTool(ctx, []string{model, "--objective", objective})
	if err != nil {
		return nil, err
	}
	out, err := parseOutput(raw)
	if err != nil {
		return nil, err
	}

	for name, value := range out.Suggested {
		o.suggestValue(name, value)
	}

	o.logger.Info("optimization complete",
		zap.String("task_id", task.ID),
		zap.String("objective", objective),
		zap.Int("suggestions", len(out.Suggested)))
	return out.result(), nil
}

func (o *Optimizer) suggestValue(name string, value float64) {
	if _, err := o.graph.GetAtom(domain.AtomParameter, name); err != nil {
		return
	}
	_, _ = o.graph.AddAtom(&domain.Atom{
		Type:     domain.AtomParameter,
		Name:     name,
		Truth:    domain.TruthValue{},
		Metadata: map[string]any{"suggested_value": value},
	})
}
