package agent

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Graph is the read/write surface agents use to record findings in the
// shared knowledge graph. Agents own no atoms themselves.
type Graph interface {
	GetAtom(atomType domain.AtomType, name string) (*domain.Atom, error)
	AddAtom(atom *domain.Atom) (*domain.Atom, error)
}

// Agent processes tasks of one role. ProcessTask consumes a running task
// and returns its result; errors are converted to failed tasks by the
// coordinator, never propagated further.
type Agent interface {
	ID() string
	Role() domain.Role
	ProcessTask(ctx context.Context, task *domain.Task) (*domain.TaskResult, error)
}

// CommandRunner executes an external analysis tool and returns its
// standard output. Overridable so tests can stub the invocation.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Config wires an agent to its external tool.
type Config struct {
	ToolPath string
	Timeout  time.Duration
	Runner   CommandRunner
}

const defaultToolTimeout = 2 * time.Minute

// New creates an agent for the given role. Returns an error for roles
// outside the fixed set.
func New(role domain.Role, id string, graph Graph, cfg Config, logger *zap.Logger) (Agent, error) {
	b := newBase(id, role, graph, cfg, logger)
	switch role {
	case domain.RoleSimulator:
		return &Simulator{base: b}, nil
	case domain.RoleVerifier:
		return &Verifier{base: b}, nil
	case domain.RoleAnalyzer:
		return &Analyzer{base: b}, nil
	case domain.RoleOptimizer:
		return &Optimizer{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: unknown agent role %q", domain.ErrValidation, role)
	}
}

type base struct {
	id      string
	role    domain.Role
	graph   Graph
	tool    string
	timeout time.Duration
	run     CommandRunner
	logger  *zap.Logger
}

func newBase(id string, role domain.Role, graph Graph, cfg Config, logger *zap.Logger) base {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	run := cfg.Runner
	if run == nil {
		run = execCommand
	}
	return base{
		id:      id,
		role:    role,
		graph:   graph,
		tool:    cfg.ToolPath,
		timeout: timeout,
		run:     run,
		logger:  logger,
	}
}

func (b *base) ID() string        { return b.id }
func (b *base) Role() domain.Role { return b.role }

// runTool invokes the wrapped executable under the configured deadline. A
// deadline hit surfaces as ErrTimeout, any other failure as
// ErrExternalTool; the call can never hang unbounded.
func (b *base) runTool(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	out, err := b.run(ctx, b.tool, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s exceeded %s", domain.ErrTimeout, b.tool, b.timeout)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExternalTool, b.tool, err)
	}
	return out, nil
}

func paramString(task *domain.Task, key string) string {
	v, ok := task.Parameters[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func paramFloat(task *domain.Task, key string, fallback float64) float64 {
	v, ok := task.Parameters[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return fallback
}

func paramInt(task *domain.Task, key string, fallback int) int {
	return int(paramFloat(task, key, float64(fallback)))
}
