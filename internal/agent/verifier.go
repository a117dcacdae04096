package agent

import (
	"context"
	"fmt"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Verifier wraps an external formal verifier computing probability bounds
// for a reachability goal. Tighter bounds translate to higher confidence
// when the finding is written back onto the goal atom.
type Verifier struct {
	base
}

func (v *Verifier) ProcessTask(ctx context.Context, task *domain.Task) (*domain.TaskResult, error) {
	model := paramString(task, "model_file")
	goal := paramString(task, "goal")
	if model == "" || goal == "" {
		return nil, fmt.Errorf("%w: verification task %q requires model_file and goal", domain.ErrValidation, task.ID)
	}
	precision := paramFloat(task, "precision", 0.01)

	raw, err := v.runTool(ctx, []string{model, "--goal", goal, "--precision", ftoa(precision)})
	if err != nil {
		return nil, err
	}
	out, err := parseOutput(raw)
	if err != nil {
		return nil, err
	}
	if len(out.Bounds) != 2 {
		return nil, fmt.Errorf("%w: verifier output missing probability bounds", domain.ErrExternalTool)
	}
	if out.Bounds[0] > out.Bounds[1] {
		return nil, fmt.Errorf("%w: verifier reported inverted bounds [%g, %g]", domain.ErrExternalTool, out.Bounds[0], out.Bounds[1])
	}

	v.recordBounds(goal, domain.Interval{Lower: out.Bounds[0], Upper: out.Bounds[1]})

	v.logger.Info("verification complete",
		zap.String("task_id", task.ID),
		zap.String("goal", goal),
		zap.Float64("lower", out.Bounds[0]),
		zap.Float64("upper", out.Bounds[1]))
	return out.result(), nil
}

// recordBounds folds a verified probability interval into the goal atom:
// strength is the interval midpoint, confidence reflects its tightness.
func (v *Verifier) recordBounds(goal string, bounds domain.Interval) {
	if _, err := v.graph.GetAtom(domain.AtomGoal, goal); err != nil {
		return
	}
	confidence := 1 - bounds.Width()
	if confidence < 0 {
		confidence = 0
	}
	_, err := v.graph.AddAtom(&domain.Atom{
		Type:  domain.AtomGoal,
		Name:  goal,
		Truth: domain.TruthValue{Strength: (bounds.Lower + bounds.Upper) / 2, Confidence: confidence},
	})
	if err != nil {
		v.logger.Warn("goal update rejected",
			zap.String("goal", goal),
			zap.Error(err))
	}
}
