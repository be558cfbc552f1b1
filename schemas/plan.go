package schemas

import (
	"errors"
	"fmt"
)

// MigrationPlan describes a forklift plan moving VMs from a source provider
// to a target provider using pre-created network and storage maps.
type MigrationPlan struct {
	Name           string   `json:"name"`
	Namespace      string   `json:"namespace"`
	SourceProvider string   `json:"source_provider"`
	TargetProvider string   `json:"target_provider"`
	NetworkMap     string   `json:"network_map"`
	StorageMap     string   `json:"storage_map"`
	VMs            []PlanVM `json:"vms"`
}

// PlanVM identifies one VM included in a migration plan.
type PlanVM struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Validate checks the plan can be submitted.
func (p *MigrationPlan) Validate() error {
	if p.Name == "" {
		return errors.New("plan missing name")
	}
	if p.Namespace == "" {
		return errors.New("plan missing namespace")
	}
	if p.SourceProvider == "" || p.TargetProvider == "" {
		return fmt.Errorf("plan %s missing provider reference", p.Name)
	}
	if len(p.VMs) == 0 {
		return fmt.Errorf("plan %s has no vms", p.Name)
	}
	for _, vm := range p.VMs {
		if vm.Name == "" {
			return fmt.Errorf("plan %s contains a vm without a name", p.Name)
		}
	}
	return nil
}

// TaskStatus tracks a unit of migration work through its lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is one step of a migration engagement, assigned to an agent role.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Agent       string     `json:"agent"`
	Status      TaskStatus `json:"status"`
	Result      string     `json:"result,omitempty"`
}

// Transition moves the task to a new status, rejecting moves out of a
// terminal state.
func (t *Task) Transition(next TaskStatus) error {
	switch t.Status {
	case TaskCompleted, TaskFailed:
		return fmt.Errorf("task %s already %s", t.ID, t.Status)
	}
	switch next {
	case TaskPending, TaskInProgress, TaskCompleted, TaskFailed:
		t.Status = next
		return nil
	default:
		return fmt.Errorf("unknown task status %q", next)
	}
}
