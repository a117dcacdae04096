package scheduler

import (
	"fmt"

	"github.com/cogpy/probreacog/internal/domain"
)

// ExportState copies all task and workflow state, in creation order, for
// inclusion in an engine snapshot.
func (c *Coordinator) ExportState() ([]domain.Task, []domain.Workflow) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := make([]domain.Task, 0, len(c.taskOrder))
	for _, tid := range c.taskOrder {
		task := *c.tasks[tid]
		if task.Result != nil {
			result := *task.Result
			task.Result = &result
		}
		tasks = append(tasks, task)
	}

	workflows := make([]domain.Workflow, 0, len(c.wfOrder))
	for _, id := range c.wfOrder {
		workflows = append(workflows, *c.workflows[id])
	}
	return tasks, workflows
}

// importedState holds fully validated replacement state so ImportState can
// assign it in one step.
type importedState struct {
	tasks     map[string]*domain.Task
	taskOrder []string
	workflows map[string]*domain.Workflow
	wfOrder   []string
}

// buildStateLocked validates the snapshot contents against the current
// agent pool and builds the replacement maps without touching live state.
func (c *Coordinator) buildStateLocked(tasks []domain.Task, workflows []domain.Workflow) (*importedState, error) {
	st := &importedState{
		tasks:     make(map[string]*domain.Task, len(tasks)),
		taskOrder: make([]string, 0, len(tasks)),
		workflows: make(map[string]*domain.Workflow, len(workflows)),
		wfOrder:   make([]string, 0, len(workflows)),
	}
	for i := range tasks {
		task := tasks[i]
		if _, ok := st.tasks[task.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate task %q in snapshot", domain.ErrValidation, task.ID)
		}
		if !domain.ValidRole(string(task.Role)) {
			return nil, fmt.Errorf("%w: task %q has unknown role %q", domain.ErrValidation, task.ID, task.Role)
		}
		if !task.Status.Terminal() && len(c.agents[task.Role]) == 0 {
			return nil, fmt.Errorf("%w: task %q needs role %q but no agent is registered for it", domain.ErrValidation, task.ID, task.Role)
		}
		if task.Result != nil {
			result := *task.Result
			task.Result = &result
		}
		st.tasks[task.ID] = &task
		st.taskOrder = append(st.taskOrder, task.ID)
	}

	for i := range workflows {
		wf := workflows[i]
		for _, tid := range wf.TaskIDs {
			if _, ok := st.tasks[tid]; !ok {
				return nil, fmt.Errorf("%w: workflow %q references missing task %q", domain.ErrDependency, wf.ID, tid)
			}
		}
		st.workflows[wf.ID] = &wf
		st.wfOrder = append(st.wfOrder, wf.ID)
	}
	return st, nil
}

// ValidateState runs the same checks as ImportState without applying
// anything, so callers can reject a snapshot before committing any part
// of it.
func (c *Coordinator) ValidateState(tasks []domain.Task, workflows []domain.Workflow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.buildStateLocked(tasks, workflows)
	return err
}

// ImportState replaces all task and workflow state with the snapshot
// contents. Registered agents are unaffected. Every non-terminal task must
// carry a role some registered agent serves, otherwise the snapshot is
// rejected whole and live state is untouched.
func (c *Coordinator) ImportState(tasks []domain.Task, workflows []domain.Workflow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.buildStateLocked(tasks, workflows)
	if err != nil {
		return err
	}
	c.tasks = st.tasks
	c.taskOrder = st.taskOrder
	c.workflows = st.workflows
	c.wfOrder = st.wfOrder
	c.cursor = make(map[domain.Role]int)
	return nil
}
