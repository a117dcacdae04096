package domain

import "time"

type Role string

const (
	RoleSimulator Role = "simulator"
	RoleVerifier  Role = "verifier"
	RoleAnalyzer  Role = "analyzer"
	RoleOptimizer Role = "optimizer"
)

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleSimulator, RoleVerifier, RoleAnalyzer, RoleOptimizer:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskReady     TaskStatus = "ready"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// rank orders statuses along the one-directional lifecycle. Failure is
// reachable from any non-terminal state (a blocked task fails without ever
// running).
func (s TaskStatus) rank() int {
	switch s {
	case TaskPending:
		return 0
	case TaskReady:
		return 1
	case TaskRunning:
		return 2
	case TaskCompleted, TaskFailed:
		return 3
	}
	return -1
}

// CanTransition reports whether moving from s to next respects the
// monotonic task lifecycle. Terminal states admit no transition.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == TaskFailed {
		return true
	}
	return next.rank() == s.rank()+1
}

// Interval is a closed numeric interval, used for parameter bounds and
// verified probability bounds.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// TaskResult is the structured outcome of one external analysis run.
type TaskResult struct {
	Probability  float64           `json:"probability"`
	Bounds       Interval          `json:"bounds"`
	Trajectories int               `json:"trajectories"`
	Output       map[string]string `json:"output,omitempty"`
}

// Task is one unit of analysis work dispatched to a role-matched agent.
// Status transitions are monotonic: pending -> ready -> running ->
// completed|failed, with failed reachable early for blocked tasks.
type Task struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         Role           `json:"role"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Status       TaskStatus     `json:"status"`
	Result       *TaskResult    `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	Priority     float64        `json:"priority"`
}

// Workflow is a named acyclic dependency graph over a set of tasks.
// Acyclicity is validated once at creation and never re-checked per run.
type Workflow struct {
	ID        string    `json:"id"`
	TaskIDs   []string  `json:"task_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskReport is the per-task slice of a workflow execution report.
type TaskReport struct {
	ID       string      `json:"id"`
	Status   TaskStatus  `json:"status"`
	Priority float64     `json:"priority"`
	Result   *TaskResult `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// WorkflowReport is always returned in full by workflow execution, even
// when tasks failed or the workflow stalled. A stall is data, not an error.
type WorkflowReport struct {
	WorkflowID string                `json:"workflow_id"`
	Tasks      map[string]TaskReport `json:"tasks"`
	Completed  int                   `json:"completed"`
	Failed     int                   `json:"failed"`
	Total      int                   `json:"total"`
	Stalled    bool                  `json:"stalled"`
	Blocked    []string              `json:"blocked,omitempty"`
}
