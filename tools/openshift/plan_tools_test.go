package openshift

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsampaio-rh/virt-llm-agents/schemas"
)

// createdMap records one map-creation call.
type createdMap struct {
	name     string
	sourceID string
	target   string
}

// stubPlanner records the calls the plan tools make.
type stubPlanner struct {
	providers  map[string]string
	vms        map[string]string
	networks   map[string]string
	datastores map[string]string

	networkMaps []createdMap
	storageMaps []createdMap
	created     *schemas.MigrationPlan
	started     []string
}

func newStubPlanner() *stubPlanner {
	return &stubPlanner{
		providers:  map[string]string{"vsphere-prod": "uid-src", "openshift": "uid-dst"},
		vms:        map[string]string{"database-server-01": "vm-1", "web-frontend-01": "vm-2"},
		networks:   map[string]string{"VM Network": "net-1"},
		datastores: map[string]string{"datastore1": "ds-1"},
	}
}

func (s *stubPlanner) LookupProvider(ctx context.Context, namespace, name string) (*Provider, error) {
	uid, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in namespace %s", name, namespace)
	}
	return &Provider{Name: name, UID: uid}, nil
}

func (s *stubPlanner) LookupVM(ctx context.Context, providerUID, name string) (*InventoryRef, error) {
	return s.lookup(s.vms, "vms", providerUID, name)
}

func (s *stubPlanner) LookupNetwork(ctx context.Context, providerUID, name string) (*InventoryRef, error) {
	return s.lookup(s.networks, "networks", providerUID, name)
}

func (s *stubPlanner) LookupDatastore(ctx context.Context, providerUID, name string) (*InventoryRef, error) {
	return s.lookup(s.datastores, "datastores", providerUID, name)
}

func (s *stubPlanner) lookup(table map[string]string, kind, providerUID, name string) (*InventoryRef, error) {
	id, ok := table[name]
	if !ok {
		return nil, fmt.Errorf("%s %s not found for provider %s", kind, name, providerUID)
	}
	return &InventoryRef{Name: name, ID: id}, nil
}

func (s *stubPlanner) CreateNetworkMap(ctx context.Context, namespace, name, sourceProvider, targetProvider, sourceNetworkID, target string) error {
	s.networkMaps = append(s.networkMaps, createdMap{name: name, sourceID: sourceNetworkID, target: target})
	return nil
}

func (s *stubPlanner) CreateStorageMap(ctx context.Context, namespace, name, sourceProvider, targetProvider, sourceDatastoreID, storageClass string) error {
	s.storageMaps = append(s.storageMaps, createdMap{name: name, sourceID: sourceDatastoreID, target: storageClass})
	return nil
}

func (s *stubPlanner) CreatePlan(ctx context.Context, plan *schemas.MigrationPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	s.created = plan
	return nil
}

func (s *stubPlanner) StartPlan(ctx context.Context, namespace, planName string) error {
	s.started = append(s.started, namespace+"/"+planName)
	return nil
}

func newCreateTool(planner Planner) *CreatePlanTool {
	return &CreatePlanTool{
		Client:          planner,
		Namespace:       "openshift-mtv",
		SourceProvider:  "vsphere-prod",
		TargetProvider:  "openshift",
		SourceNetwork:   "VM Network",
		TargetNetwork:   "migration-net",
		SourceDatastore: "datastore1",
		StorageClass:    "ocs-storagecluster-ceph-rbd",
	}
}

func TestCreatePlan(t *testing.T) {
	planner := newStubPlanner()
	tool := newCreateTool(planner)

	payload, err := tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-1",
		"vm_names":  []interface{}{"database-server-01", "web-frontend-01"},
	})
	require.NoError(t, err)
	assert.Contains(t, fmt.Sprint(payload), "wave-1")

	require.NotNil(t, planner.created)
	assert.Equal(t, "wave-1", planner.created.Name)
	assert.Equal(t, "openshift-mtv", planner.created.Namespace)
	require.Len(t, planner.created.VMs, 2)
	assert.Equal(t, "vm-1", planner.created.VMs[0].ID)
}

func TestCreatePlanBuildsMaps(t *testing.T) {
	planner := newStubPlanner()
	tool := newCreateTool(planner)

	_, err := tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-1",
		"vm_names":  []interface{}{"database-server-01"},
	})
	require.NoError(t, err)

	require.Len(t, planner.networkMaps, 1)
	assert.Equal(t, "wave-1-network-map", planner.networkMaps[0].name)
	assert.Equal(t, "net-1", planner.networkMaps[0].sourceID, "source network resolved to its inventory id")
	assert.Equal(t, "migration-net", planner.networkMaps[0].target)

	require.Len(t, planner.storageMaps, 1)
	assert.Equal(t, "wave-1-storage-map", planner.storageMaps[0].name)
	assert.Equal(t, "ds-1", planner.storageMaps[0].sourceID)
	assert.Equal(t, "ocs-storagecluster-ceph-rbd", planner.storageMaps[0].target)

	// The submitted plan references the maps just created, never
	// pre-existing names.
	require.NotNil(t, planner.created)
	assert.Equal(t, "wave-1-network-map", planner.created.NetworkMap)
	assert.Equal(t, "wave-1-storage-map", planner.created.StorageMap)
}

func TestCreatePlanDefaultsToPodNetwork(t *testing.T) {
	planner := newStubPlanner()
	tool := newCreateTool(planner)
	tool.TargetNetwork = ""

	_, err := tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-2",
		"vm_names":  []interface{}{"database-server-01"},
	})
	require.NoError(t, err)
	require.Len(t, planner.networkMaps, 1)
	assert.Equal(t, "pod", planner.networkMaps[0].target)
}

func TestCreatePlanUnknownSourceNetwork(t *testing.T) {
	planner := newStubPlanner()
	tool := newCreateTool(planner)
	tool.SourceNetwork = "ghost-net"

	_, err := tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-3",
		"vm_names":  []interface{}{"database-server-01"},
	})
	require.Error(t, err)
	assert.Nil(t, planner.created, "plan must not be submitted without its maps")
}

func TestCreatePlanRequiresMapEndpoints(t *testing.T) {
	for _, mutate := range []func(*CreatePlanTool){
		func(tool *CreatePlanTool) { tool.SourceNetwork = "" },
		func(tool *CreatePlanTool) { tool.SourceDatastore = "" },
		func(tool *CreatePlanTool) { tool.StorageClass = "" },
	} {
		planner := newStubPlanner()
		tool := newCreateTool(planner)
		mutate(tool)
		_, err := tool.Invoke(context.Background(), map[string]interface{}{
			"plan_name": "wave-4",
			"vm_names":  []interface{}{"database-server-01"},
		})
		require.Error(t, err)
		assert.Nil(t, planner.created)
	}
}

func TestCreatePlanSingleNameString(t *testing.T) {
	planner := newStubPlanner()
	tool := newCreateTool(planner)

	_, err := tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-5",
		"vm_names":  "database-server-01",
	})
	require.NoError(t, err)
	require.Len(t, planner.created.VMs, 1)
}

func TestCreatePlanMissingArguments(t *testing.T) {
	tool := newCreateTool(newStubPlanner())

	_, err := tool.Invoke(context.Background(), map[string]interface{}{"vm_names": []interface{}{"x"}})
	require.Error(t, err)

	_, err = tool.Invoke(context.Background(), map[string]interface{}{"plan_name": "wave-6"})
	require.Error(t, err)

	_, err = tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-6",
		"vm_names":  []interface{}{42},
	})
	require.Error(t, err)
}

func TestCreatePlanUnknownVM(t *testing.T) {
	planner := newStubPlanner()
	tool := newCreateTool(planner)

	_, err := tool.Invoke(context.Background(), map[string]interface{}{
		"plan_name": "wave-7",
		"vm_names":  []interface{}{"ghost"},
	})
	require.Error(t, err)
	assert.Nil(t, planner.created)
}

func TestStartPlan(t *testing.T) {
	planner := newStubPlanner()
	tool := &StartPlanTool{Client: planner, Namespace: "openshift-mtv"}

	payload, err := tool.Invoke(context.Background(), map[string]interface{}{"plan_name": "wave-1"})
	require.NoError(t, err)
	assert.Contains(t, fmt.Sprint(payload), "started")
	assert.Equal(t, []string{"openshift-mtv/wave-1"}, planner.started)
}

func TestStartPlanMissingName(t *testing.T) {
	tool := &StartPlanTool{Client: newStubPlanner(), Namespace: "openshift-mtv"}
	_, err := tool.Invoke(context.Background(), map[string]interface{}{})
	require.Error(t, err)
}
