package vsphere

import (
	"context"
	"fmt"

	"github.com/gsampaio-rh/virt-llm-agents/schemas"
)

// FixtureDialer serves a static inventory. It backs demos and tests where no
// hypervisor is available.
type FixtureDialer struct {
	VMs []schemas.VM

	// DialErr, when set, makes every Dial fail. Used to exercise the
	// unreachable-backend path.
	DialErr error
}

// Dial returns a session over the fixture inventory.
func (d *FixtureDialer) Dial(ctx context.Context) (Session, error) {
	if d.DialErr != nil {
		return nil, d.DialErr
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return &fixtureSession{vms: d.VMs}, nil
}

type fixtureSession struct {
	vms    []schemas.VM
	closed bool
}

func (s *fixtureSession) ListVMs(ctx context.Context) ([]schemas.VM, error) {
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	return append([]schemas.VM(nil), s.vms...), nil
}

func (s *fixtureSession) GetVM(ctx context.Context, name string) (*schemas.VM, error) {
	if s.closed {
		return nil, fmt.Errorf("session closed")
	}
	for i := range s.vms {
		if s.vms[i].Name == name {
			vm := s.vms[i]
			return &vm, nil
		}
	}
	return nil, fmt.Errorf("vm %s not found in inventory", name)
}

func (s *fixtureSession) Close() error {
	s.closed = true
	return nil
}

// DemoInventory is the sample inventory wired into the CLI when no real
// backend is configured.
func DemoInventory() []schemas.VM {
	return []schemas.VM{
		{
			Name:            "database-server-01",
			UUID:            "4207a4c2-8b1d-4f0e-9a77-1f1d52f6a001",
			GuestOS:         "Red Hat Enterprise Linux 9 (64-bit)",
			CPUCount:        4,
			MemoryMB:        16384,
			PowerState:      schemas.PowerOn,
			ConnectionState: schemas.ConnectionConnected,
			Disks: []schemas.Disk{
				{Label: "Hard disk 1", CapacityGB: 200, Datastore: "datastore1", ThinProvisioned: true},
			},
			Networks: []schemas.Network{
				{Name: "VM Network", MACAddress: "00:50:56:a1:b2:c3", IPAddress: "10.0.0.21"},
			},
		},
		{
			Name:            "web-frontend-01",
			UUID:            "4207a4c2-8b1d-4f0e-9a77-1f1d52f6a002",
			GuestOS:         "Red Hat Enterprise Linux 8 (64-bit)",
			CPUCount:        2,
			MemoryMB:        4096,
			PowerState:      schemas.PowerOn,
			ConnectionState: schemas.ConnectionConnected,
			Disks: []schemas.Disk{
				{Label: "Hard disk 1", CapacityGB: 40, Datastore: "datastore1", ThinProvisioned: true},
			},
			Networks: []schemas.Network{
				{Name: "VM Network", MACAddress: "00:50:56:a1:b2:c4", IPAddress: "10.0.0.22"},
			},
		},
		{
			Name:            "legacy-batch-01",
			UUID:            "4207a4c2-8b1d-4f0e-9a77-1f1d52f6a003",
			GuestOS:         "CentOS 7 (64-bit)",
			CPUCount:        2,
			MemoryMB:        8192,
			PowerState:      schemas.PowerOff,
			ConnectionState: schemas.ConnectionConnected,
			Disks: []schemas.Disk{
				{Label: "Hard disk 1", CapacityGB: 100, Datastore: "datastore2"},
			},
			Networks: []schemas.Network{
				{Name: "VM Network", MACAddress: "00:50:56:a1:b2:c5"},
			},
		},
	}
}
