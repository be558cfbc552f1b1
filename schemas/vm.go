// Package schemas defines the payload types exchanged between tools, the
// workflow, and the servers. Validation lives next to the types so every
// entry point enforces the same shape.
package schemas

import (
	"errors"
	"fmt"
)

// PowerState is the hypervisor-reported run state of a virtual machine.
type PowerState string

const (
	PowerOn        PowerState = "poweredOn"
	PowerOff       PowerState = "poweredOff"
	PowerSuspended PowerState = "suspended"
)

// ConnectionState reports whether the hypervisor can reach the VM.
type ConnectionState string

const (
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionOrphaned     ConnectionState = "orphaned"
	ConnectionInaccessible ConnectionState = "inaccessible"
	ConnectionInvalid      ConnectionState = "invalid"
)

// Disk is one virtual disk attached to a VM.
type Disk struct {
	Label           string `json:"label"`
	CapacityGB      int64  `json:"capacity_gb"`
	Datastore       string `json:"datastore"`
	ThinProvisioned bool   `json:"thin_provisioned"`
}

// Network is one virtual NIC attachment.
type Network struct {
	Name       string `json:"name"`
	MACAddress string `json:"mac_address,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
}

// VM is the inventory record returned by the vSphere tools and consumed by
// the migration planner.
type VM struct {
	Name            string          `json:"name"`
	UUID            string          `json:"uuid,omitempty"`
	GuestOS         string          `json:"guest_os,omitempty"`
	CPUCount        int             `json:"cpu_count"`
	MemoryMB        int64           `json:"memory_mb"`
	PowerState      PowerState      `json:"power_state"`
	ConnectionState ConnectionState `json:"connection_state"`
	Disks           []Disk          `json:"disks,omitempty"`
	Networks        []Network       `json:"networks,omitempty"`
}

// Validate checks the record is internally consistent.
func (v *VM) Validate() error {
	if v.Name == "" {
		return errors.New("vm missing name")
	}
	switch v.PowerState {
	case PowerOn, PowerOff, PowerSuspended:
	default:
		return fmt.Errorf("vm %s has unknown power state %q", v.Name, v.PowerState)
	}
	switch v.ConnectionState {
	case ConnectionConnected, ConnectionDisconnected, ConnectionOrphaned,
		ConnectionInaccessible, ConnectionInvalid:
	default:
		return fmt.Errorf("vm %s has unknown connection state %q", v.Name, v.ConnectionState)
	}
	for _, disk := range v.Disks {
		if disk.CapacityGB < 0 {
			return fmt.Errorf("vm %s disk %s has negative capacity", v.Name, disk.Label)
		}
	}
	return nil
}
