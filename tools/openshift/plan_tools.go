package openshift

import (
	"context"
	"fmt"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/schemas"
)

// Planner is the subset of the client the plan tools need. Tests substitute
// a stub here.
type Planner interface {
	LookupProvider(ctx context.Context, namespace, name string) (*Provider, error)
	LookupVM(ctx context.Context, providerUID, name string) (*InventoryRef, error)
	LookupNetwork(ctx context.Context, providerUID, name string) (*InventoryRef, error)
	LookupDatastore(ctx context.Context, providerUID, name string) (*InventoryRef, error)
	CreateNetworkMap(ctx context.Context, namespace, name, sourceProvider, targetProvider, sourceNetworkID, target string) error
	CreateStorageMap(ctx context.Context, namespace, name, sourceProvider, targetProvider, sourceDatastoreID, storageClass string) error
	CreatePlan(ctx context.Context, plan *schemas.MigrationPlan) error
	StartPlan(ctx context.Context, namespace, planName string) error
}

// CreatePlanTool assembles and submits a forklift migration plan for a set
// of VM names. It creates the plan's network and storage maps itself, one
// pair per plan, so a plan never references maps that do not exist yet.
type CreatePlanTool struct {
	Client         Planner
	Namespace      string
	SourceProvider string
	TargetProvider string

	// SourceNetwork and SourceDatastore name the source-side objects the
	// maps translate; TargetNetwork and StorageClass are their cluster-side
	// counterparts. An empty TargetNetwork maps onto the pod network.
	SourceNetwork   string
	TargetNetwork   string
	SourceDatastore string
	StorageClass    string
}

func (t *CreatePlanTool) Name() string { return "create_migration_plan" }

func (t *CreatePlanTool) Description() string {
	return "Create a migration plan moving the named VMs from the source provider to OpenShift."
}

func (t *CreatePlanTool) Parameters() []framework.ToolParameter {
	return []framework.ToolParameter{
		{Name: "plan_name", Type: "string", Description: "Name for the new migration plan.", Required: true},
		{Name: "vm_names", Type: "array", Description: "Names of the VMs to migrate.", Required: true},
	}
}

// Invoke resolves providers and VM inventory IDs, then submits the plan.
func (t *CreatePlanTool) Invoke(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	planName, ok := args["plan_name"].(string)
	if !ok || planName == "" {
		return nil, fmt.Errorf("plan_name argument is required")
	}
	vmNames, err := stringList(args["vm_names"])
	if err != nil {
		return nil, err
	}

	source, err := t.Client.LookupProvider(ctx, t.Namespace, t.SourceProvider)
	if err != nil {
		return nil, err
	}
	if _, err := t.Client.LookupProvider(ctx, t.Namespace, t.TargetProvider); err != nil {
		return nil, err
	}

	networkMap, err := t.createNetworkMap(ctx, planName, source.UID)
	if err != nil {
		return nil, err
	}
	storageMap, err := t.createStorageMap(ctx, planName, source.UID)
	if err != nil {
		return nil, err
	}

	plan := &schemas.MigrationPlan{
		Name:           planName,
		Namespace:      t.Namespace,
		SourceProvider: t.SourceProvider,
		TargetProvider: t.TargetProvider,
		NetworkMap:     networkMap,
		StorageMap:     storageMap,
	}
	for _, name := range vmNames {
		ref, err := t.Client.LookupVM(ctx, source.UID, name)
		if err != nil {
			return nil, err
		}
		plan.VMs = append(plan.VMs, schemas.PlanVM{Name: ref.Name, ID: ref.ID})
	}
	if err := t.Client.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Migration plan %s created with %d VM(s).", planName, len(plan.VMs)), nil
}

// createNetworkMap resolves the source network and creates the plan's
// network map, returning the map name the plan references.
func (t *CreatePlanTool) createNetworkMap(ctx context.Context, planName, sourceUID string) (string, error) {
	if t.SourceNetwork == "" {
		return "", fmt.Errorf("no source network configured for migration plans")
	}
	network, err := t.Client.LookupNetwork(ctx, sourceUID, t.SourceNetwork)
	if err != nil {
		return "", err
	}
	target := t.TargetNetwork
	if target == "" {
		target = "pod"
	}
	name := planName + "-network-map"
	if err := t.Client.CreateNetworkMap(ctx, t.Namespace, name, t.SourceProvider, t.TargetProvider, network.ID, target); err != nil {
		return "", err
	}
	return name, nil
}

// createStorageMap resolves the source datastore and creates the plan's
// storage map, returning the map name the plan references.
func (t *CreatePlanTool) createStorageMap(ctx context.Context, planName, sourceUID string) (string, error) {
	if t.SourceDatastore == "" {
		return "", fmt.Errorf("no source datastore configured for migration plans")
	}
	if t.StorageClass == "" {
		return "", fmt.Errorf("no storage class configured for migration plans")
	}
	datastore, err := t.Client.LookupDatastore(ctx, sourceUID, t.SourceDatastore)
	if err != nil {
		return "", err
	}
	name := planName + "-storage-map"
	if err := t.Client.CreateStorageMap(ctx, t.Namespace, name, t.SourceProvider, t.TargetProvider, datastore.ID, t.StorageClass); err != nil {
		return "", err
	}
	return name, nil
}

// StartPlanTool kicks off a previously created migration plan.
type StartPlanTool struct {
	Client    Planner
	Namespace string
}

func (t *StartPlanTool) Name() string { return "start_migration_plan" }

func (t *StartPlanTool) Description() string {
	return "Start executing a previously created migration plan."
}

func (t *StartPlanTool) Parameters() []framework.ToolParameter {
	return []framework.ToolParameter{
		{Name: "plan_name", Type: "string", Description: "Name of the migration plan to start.", Required: true},
	}
}

func (t *StartPlanTool) Invoke(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	planName, ok := args["plan_name"].(string)
	if !ok || planName == "" {
		return nil, fmt.Errorf("plan_name argument is required")
	}
	if err := t.Client.StartPlan(ctx, t.Namespace, planName); err != nil {
		return nil, err
	}
	return fmt.Sprintf("Migration plan %s started.", planName), nil
}

// stringList coerces a decoded JSON array into a string slice. The model
// sometimes sends a single name instead of a list; accept that too.
func stringList(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("vm_names argument is required")
	case string:
		if v == "" {
			return nil, fmt.Errorf("vm_names argument is required")
		}
		return []string{v}, nil
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("vm_names must contain only strings")
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("vm_names argument is required")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("vm_names must be a list of strings")
	}
}
