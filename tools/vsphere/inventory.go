// Package vsphere provides VM inventory tools backed by a hypervisor
// session. The session abstraction keeps the concrete SDK out of the tools;
// anything that can list and describe VMs plugs in.
package vsphere

import (
	"context"
	"fmt"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/schemas"
)

// Session is one authenticated connection to the inventory backend.
type Session interface {
	ListVMs(ctx context.Context) ([]schemas.VM, error)
	GetVM(ctx context.Context, name string) (*schemas.VM, error)
	Close() error
}

// Dialer establishes sessions on demand. Tools dial per invocation and
// release before returning, so no connection outlives a single dispatch and
// a failed call never leaks a handle.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// ListVMsTool returns the names of every VM in the inventory.
type ListVMsTool struct {
	Dialer Dialer
}

func (t *ListVMsTool) Name() string { return "list_vms" }

func (t *ListVMsTool) Description() string {
	return "List the names of all virtual machines in the vSphere inventory."
}

func (t *ListVMsTool) Parameters() []framework.ToolParameter { return nil }

// Invoke dials a session, lists the inventory, and releases the session.
func (t *ListVMsTool) Invoke(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	session, err := t.Dialer.Dial(ctx)
	if err != nil {
		return nil, &framework.TransportError{Op: "vsphere dial", Err: err}
	}
	defer session.Close()

	vms, err := session.ListVMs(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(vms))
	for _, vm := range vms {
		names = append(names, vm.Name)
	}
	return names, nil
}

// VMDetailsTool returns the full inventory record for one VM.
type VMDetailsTool struct {
	Dialer Dialer
}

func (t *VMDetailsTool) Name() string { return "retrieve_vm_details" }

func (t *VMDetailsTool) Description() string {
	return "Retrieve the configuration and state of a single virtual machine by name."
}

func (t *VMDetailsTool) Parameters() []framework.ToolParameter {
	return []framework.ToolParameter{
		{Name: "vm_name", Type: "string", Description: "Name of the virtual machine.", Required: true},
	}
}

// Invoke dials a session, fetches one VM, and releases the session.
func (t *VMDetailsTool) Invoke(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	name, ok := args["vm_name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("vm_name argument is required")
	}
	session, err := t.Dialer.Dial(ctx)
	if err != nil {
		return nil, &framework.TransportError{Op: "vsphere dial", Err: err}
	}
	defer session.Close()

	vm, err := session.GetVM(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := vm.Validate(); err != nil {
		return nil, err
	}
	return vm, nil
}
