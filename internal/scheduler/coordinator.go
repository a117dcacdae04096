package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cogpy/probreacog/internal/agent"
	"github.com/cogpy/probreacog/internal/domain"
	"go.uber.org/zap"
)

// Allocator is the attention signal the coordinator uses to bias task
// priorities between dispatch rounds.
type Allocator interface {
	RunAttentionCycle(iterations int)
	GetTopAtoms(n int, atomType domain.AtomType) []*domain.Atom
}

const (
	// attentionTopN is how many high-STI atoms are consulted per dispatch
	// round.
	attentionTopN = 10
	// attentionPriorityBoost is added to a task's effective priority for
	// each high-STI atom its parameters reference.
	attentionPriorityBoost = 0.1
)

// Coordinator owns all task and workflow state. It maintains a
// role-indexed agent pool with round-robin dispatch, and drives workflow
// execution respecting dependencies, priority and the allocator's
// attention signal.
type Coordinator struct {
	mu        sync.Mutex
	agents    map[domain.Role][]agent.Agent
	cursor    map[domain.Role]int
	tasks     map[string]*domain.Task
	taskOrder []string
	workflows map[string]*domain.Workflow
	wfOrder   []string
	allocator Allocator
	logger    *zap.Logger
}

func New(allocator Allocator, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		agents:    make(map[domain.Role][]agent.Agent),
		cursor:    make(map[domain.Role]int),
		tasks:     make(map[string]*domain.Task),
		workflows: make(map[string]*domain.Workflow),
		allocator: allocator,
		logger:    logger,
	}
}

// RegisterAgent adds an agent to the role-indexed pool. Multiple agents
// per role dispatch round-robin.
func (c *Coordinator) RegisterAgent(a agent.Agent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents[a.Role()] = append(c.agents[a.Role()], a)
	c.logger.Info("agent registered",
		zap.String("agent_id", a.ID()),
		zap.String("role", string(a.Role())))
}

// CreateTask creates a pending task. Fails with ErrValidation when no
// agent is registered for the role, and with ErrValidation on a duplicate
// id.
func (c *Coordinator) CreateTask(id, taskType string, role domain.Role, params map[string]any, priority float64, deps []string) (*domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.agents[role]) == 0 {
		return nil, fmt.Errorf("%w: no agent registered for role %q", domain.ErrValidation, role)
	}
	if _, ok := c.tasks[id]; ok {
		return nil, fmt.Errorf("%w: task %q already exists", domain.ErrValidation, id)
	}

	task := &domain.Task{
		ID:           id,
		Type:         taskType,
		Role:         role,
		Parameters:   params,
		Dependencies: append([]string(nil), deps...),
		Status:       domain.TaskPending,
		Priority:     priority,
	}
	c.tasks[id] = task
	c.taskOrder = append(c.taskOrder, id)
	return task, nil
}

// SubmitTask enqueues a task; with no unmet dependencies it becomes ready
// immediately. Unknown dependency ids fail with ErrDependency.
func (c *Coordinator) SubmitTask(task *domain.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, dep := range task.Dependencies {
		if _, ok := c.tasks[dep]; !ok {
			return fmt.Errorf("%w: task %q depends on unknown task %q", domain.ErrDependency, task.ID, dep)
		}
	}
	if task.Status.CanTransition(domain.TaskReady) && c.depsCompleted(task) {
		task.Status = domain.TaskReady
	}
	return nil
}

// CreateWorkflow registers a named workflow over already-created tasks.
// Dependencies must stay inside the workflow (ErrDependency) and form an
// acyclic graph (ErrCycle); acyclicity is validated once, here, and never
// re-checked per run.
func (c *Coordinator) CreateWorkflow(id string, taskIDs []string) (*domain.Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.workflows[id]; ok {
		return nil, fmt.Errorf("%w: workflow %q already exists", domain.ErrValidation, id)
	}

	member := make(map[string]bool, len(taskIDs))
	for _, tid := range taskIDs {
		if _, ok := c.tasks[tid]; !ok {
			return nil, fmt.Errorf("%w: workflow %q references unknown task %q", domain.ErrDependency, id, tid)
		}
		member[tid] = true
	}
	for _, tid := range taskIDs {
		for _, dep := range c.tasks[tid].Dependencies {
			if !member[dep] {
				return nil, fmt.Errorf("%w: task %q depends on %q outside workflow %q", domain.ErrDependency, tid, dep, id)
			}
		}
	}
	if err := checkAcyclic(taskIDs, c.tasks); err != nil {
		return nil, err
	}

	wf := &domain.Workflow{
		ID:        id,
		TaskIDs:   append([]string(nil), taskIDs...),
		CreatedAt: time.Now().UTC(),
	}
	c.workflows[id] = wf
	c.wfOrder = append(c.wfOrder, id)

	for _, tid := range taskIDs {
		task := c.tasks[tid]
		if task.Status.CanTransition(domain.TaskReady) && len(task.Dependencies) == 0 {
			task.Status = domain.TaskReady
		}
	}

	c.logger.Info("workflow created", zap.String("workflow_id", id), zap.Int("tasks", len(taskIDs)))
	return wf, nil
}

// checkAcyclic runs Kahn's algorithm over the workflow members.
func checkAcyclic(taskIDs []string, tasks map[string]*domain.Task) error {
	indegree := make(map[string]int, len(taskIDs))
	dependents := make(map[string][]string, len(taskIDs))
	for _, tid := range taskIDs {
		indegree[tid] = len(tasks[tid].Dependencies)
		for _, dep := range tasks[tid].Dependencies {
			dependents[dep] = append(dependents[dep], tid)
		}
	}

	var queue []string
	for _, tid := range taskIDs {
		if indegree[tid] == 0 {
			queue = append(queue, tid)
		}
	}
	visited := 0
	for len(queue) > 0 {
		tid := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[tid] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited != len(taskIDs) {
		var stuck []string
		for _, tid := range taskIDs {
			if indegree[tid] > 0 {
				stuck = append(stuck, tid)
			}
		}
		return fmt.Errorf("%w: tasks %v form a cycle", domain.ErrCycle, stuck)
	}
	return nil
}

// GetTask returns a copy of the task's current state.
func (c *Coordinator) GetTask(id string) (domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return *task, true
}

// AllocateAttention triggers one allocator cycle. Called between dispatch
// rounds so the priority bias sees fresh importance values.
func (c *Coordinator) AllocateAttention() {
	if c.allocator != nil {
		c.allocator.RunAttentionCycle(1)
	}
}

// ExecuteWorkflow runs every task of the workflow to a terminal state, one
// task at a time in effective-priority order. It always returns a full
// per-task report; a stalled workflow is reported in the result, never
// raised. Only an unknown workflow id is an error. Cancellation is honored
// at every dispatch boundary and needs no rollback: task effects apply
// atomically on terminal transitions only.
func (c *Coordinator) ExecuteWorkflow(ctx context.Context, id string) (*domain.WorkflowReport, error) {
	c.mu.Lock()
	wf, ok := c.workflows[id]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: workflow %q not found", domain.ErrValidation, id)
	}
	taskIDs := append([]string(nil), wf.TaskIDs...)
	c.mu.Unlock()

	c.logger.Info("workflow execution started", zap.String("workflow_id", id))

	for {
		if err := ctx.Err(); err != nil {
			return c.report(id, taskIDs), err
		}
		if c.allTerminal(taskIDs) {
			break
		}

		c.AllocateAttention()
		next := c.nextReady(taskIDs)
		if next == "" {
			// Nothing ready and nothing running: the workflow is stalled.
			break
		}
		c.dispatch(ctx, next)
	}

	report := c.report(id, taskIDs)
	c.logger.Info("workflow execution finished",
		zap.String("workflow_id", id),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
		zap.Bool("stalled", report.Stalled))
	return report, nil
}

// nextReady promotes eligible tasks, then returns the ready task with the
// highest effective priority. Attention bias: tasks whose parameters name
// atoms in the current high-STI set are promoted. Ties resolve by
// creation order.
func (c *Coordinator) nextReady(taskIDs []string) string {
	focus := c.focusNames()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.promoteLocked(taskIDs)

	best := ""
	bestPriority := 0.0
	for _, tid := range taskIDs {
		task := c.tasks[tid]
		if task.Status != domain.TaskReady {
			continue
		}
		p := c.effectivePriority(task, focus)
		if best == "" || p > bestPriority {
			best = tid
			bestPriority = p
		}
	}
	return best
}

func (c *Coordinator) focusNames() map[string]bool {
	names := make(map[string]bool)
	if c.allocator == nil {
		return names
	}
	for _, atom := range c.allocator.GetTopAtoms(attentionTopN, "") {
		names[atom.Name] = true
	}
	return names
}

func (c *Coordinator) effectivePriority(task *domain.Task, focus map[string]bool) float64 {
	p := task.Priority
	for _, v := range task.Parameters {
		if s, ok := v.(string); ok && focus[s] {
			p += attentionPriorityBoost
		}
	}
	return p
}

// promoteLocked moves pending tasks whose dependencies all completed to
// ready, and fails tasks blocked by a failed dependency, cascading
// transitively.
func (c *Coordinator) promoteLocked(taskIDs []string) {
	for changed := true; changed; {
		changed = false
		for _, tid := range taskIDs {
			task := c.tasks[tid]
			if !task.Status.CanTransition(domain.TaskReady) {
				continue
			}
			if blockedBy := c.failedDep(task); blockedBy != "" {
				task.Status = domain.TaskFailed
				task.Error = "blocked by dependency: " + blockedBy
				c.logger.Warn("task blocked",
					zap.String("task_id", tid),
					zap.String("failed_dependency", blockedBy))
				changed = true
				continue
			}
			if c.depsCompleted(task) {
				task.Status = domain.TaskReady
				changed = true
			}
		}
	}
}

func (c *Coordinator) failedDep(task *domain.Task) string {
	for _, dep := range task.Dependencies {
		if d, ok := c.tasks[dep]; ok && d.Status == domain.TaskFailed {
			return dep
		}
	}
	return ""
}

func (c *Coordinator) depsCompleted(task *domain.Task) bool {
	for _, dep := range task.Dependencies {
		d, ok := c.tasks[dep]
		if !ok || d.Status != domain.TaskCompleted {
			return false
		}
	}
	return true
}

// dispatch hands one ready task to an agent of its role and runs it to
// completion. Results apply atomically on the terminal transition; an
// agent failure becomes a failed task, never an uncaught fault.
func (c *Coordinator) dispatch(ctx context.Context, taskID string) {
	c.mu.Lock()
	task := c.tasks[taskID]
	worker := c.pickAgentLocked(task.Role)
	task.Status = domain.TaskRunning
	c.mu.Unlock()

	c.logger.Info("task dispatched",
		zap.String("task_id", taskID),
		zap.String("role", string(task.Role)),
		zap.String("agent_id", worker.ID()))

	result, err := worker.ProcessTask(ctx, task)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		task.Status = domain.TaskFailed
		task.Error = err.Error()
		c.logger.Warn("task failed", zap.String("task_id", taskID), zap.Error(err))
		return
	}
	task.Result = result
	task.Status = domain.TaskCompleted
}

// pickAgentLocked round-robins among same-role agents.
func (c *Coordinator) pickAgentLocked(role domain.Role) agent.Agent {
	pool := c.agents[role]
	a := pool[c.cursor[role]%len(pool)]
	c.cursor[role]++
	return a
}

func (c *Coordinator) allTerminal(taskIDs []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tid := range taskIDs {
		if !c.tasks[tid].Status.Terminal() {
			return false
		}
	}
	return true
}

func (c *Coordinator) report(workflowID string, taskIDs []string) *domain.WorkflowReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := &domain.WorkflowReport{
		WorkflowID: workflowID,
		Tasks:      make(map[string]domain.TaskReport, len(taskIDs)),
		Total:      len(taskIDs),
	}
	for _, tid := range taskIDs {
		task := c.tasks[tid]
		report.Tasks[tid] = domain.TaskReport{
			ID:       tid,
			Status:   task.Status,
			Priority: task.Priority,
			Result:   task.Result,
			Error:    task.Error,
		}
		switch task.Status {
		case domain.TaskCompleted:
			report.Completed++
		case domain.TaskFailed:
			report.Failed++
		default:
			report.Blocked = append(report.Blocked, tid)
		}
	}
	if len(report.Blocked) > 0 {
		report.Stalled = true
		sort.Strings(report.Blocked)
	}
	return report
}
