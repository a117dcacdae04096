package domain

import "testing"

func TestTaskStatusCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{"pending to ready", TaskPending, TaskReady, true},
		{"ready to running", TaskReady, TaskRunning, true},
		{"running to completed", TaskRunning, TaskCompleted, true},
		{"pending to failed - blocked task", TaskPending, TaskFailed, true},
		{"ready to failed", TaskReady, TaskFailed, true},
		{"running to failed", TaskRunning, TaskFailed, true},
		{"pending to running - skips ready", TaskPending, TaskRunning, false},
		{"ready to completed - skips running", TaskReady, TaskCompleted, false},
		{"completed is terminal", TaskCompleted, TaskFailed, false},
		{"failed is terminal", TaskFailed, TaskReady, false},
		{"running back to ready", TaskRunning, TaskReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	for _, s := range []TaskStatus{TaskPending, TaskReady, TaskRunning} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []TaskStatus{TaskCompleted, TaskFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"simulator", "verifier", "analyzer", "optimizer"} {
		if !ValidRole(r) {
			t.Errorf("expected %q valid", r)
		}
	}
	if ValidRole("janitor") {
		t.Error("expected unknown role invalid")
	}
}
