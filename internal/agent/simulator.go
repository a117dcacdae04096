package agent

import (
	"context"
	"fmt"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Simulator wraps an external path simulator. It samples trajectories of
// the model and records the empirical goal probability back into the
// knowledge graph.
type Simulator struct {
	base
}

func (s *Simulator) ProcessTask(ctx context.Context, task *domain.Task) (*domain.TaskResult, error) {
	model := paramString(task, "model_file")
	if model == "" {
		return nil, fmt.Errorf("%w: simulation task %q missing model_file", domain.ErrValidation, task.ID)
	}
	paths := paramInt(task, "paths", 100)
	depth := paramInt(task, "depth", 365)

	raw, err := s.runTool(ctx, []string{model, "--paths", itoa(paths), "--depth", itoa(depth)})
	if err != nil {
		return nil, err
	}
	out, err := parseOutput(raw)
	if err != nil {
		return nil, err
	}

	if goal := paramString(task, "goal"); goal != "" && out.Probability != nil {
		s.recordEstimate(goal, *out.Probability, out.Trajectories)
	}

	s.logger.Info("simulation complete",
		zap.String("task_id", task.ID),
		zap.String("model", model),
		zap.Int("trajectories", out.Trajectories))
	return out.result(), nil
}

// recordEstimate revises the goal atom with the sampled probability. The
// estimate's confidence grows with the number of trajectories but stays
// below certainty.
func (s *Simulator) recordEstimate(goal string, probability float64, trajectories int) {
	if _, err := s.graph.GetAtom(domain.AtomGoal, goal); err != nil {
		return
	}
	confidence := float64(trajectories) / (float64(trajectories) + 50)
	_, _ = s.graph.AddAtom(&domain.Atom{
		Type:  domain.AtomGoal,
		Name:  goal,
		Truth: domain.TruthValue{Strength: probability, Confidence: confidence},
	})
}
