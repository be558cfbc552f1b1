package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVM() VM {
	return VM{
		Name:            "db-01",
		CPUCount:        2,
		MemoryMB:        4096,
		PowerState:      PowerOn,
		ConnectionState: ConnectionConnected,
		Disks:           []Disk{{Label: "Hard disk 1", CapacityGB: 40}},
	}
}

func TestVMValidate(t *testing.T) {
	vm := validVM()
	require.NoError(t, vm.Validate())

	vm = validVM()
	vm.Name = ""
	assert.Error(t, vm.Validate())

	vm = validVM()
	vm.PowerState = "running"
	assert.Error(t, vm.Validate())

	vm = validVM()
	vm.ConnectionState = "unknown"
	assert.Error(t, vm.Validate())

	vm = validVM()
	vm.Disks[0].CapacityGB = -1
	assert.Error(t, vm.Validate())
}

func validPlan() MigrationPlan {
	return MigrationPlan{
		Name:           "wave-1",
		Namespace:      "openshift-mtv",
		SourceProvider: "vsphere-prod",
		TargetProvider: "openshift",
		VMs:            []PlanVM{{Name: "db-01", ID: "vm-1"}},
	}
}

func TestMigrationPlanValidate(t *testing.T) {
	plan := validPlan()
	require.NoError(t, plan.Validate())

	plan = validPlan()
	plan.VMs = nil
	assert.Error(t, plan.Validate())

	plan = validPlan()
	plan.SourceProvider = ""
	assert.Error(t, plan.Validate())

	plan = validPlan()
	plan.VMs = []PlanVM{{}}
	assert.Error(t, plan.Validate())
}

func TestTaskTransitions(t *testing.T) {
	task := Task{ID: "t-1", Status: TaskPending}
	require.NoError(t, task.Transition(TaskInProgress))
	require.NoError(t, task.Transition(TaskCompleted))
	assert.Error(t, task.Transition(TaskInProgress), "terminal states are final")

	task = Task{ID: "t-2", Status: TaskPending}
	assert.Error(t, task.Transition("paused"))
}
