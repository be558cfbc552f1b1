// Package openshift talks to the forklift migration toolkit running on an
// OpenShift cluster and exposes plan creation and execution as tools.
package openshift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/schemas"
)

// Client is a thin REST client for the forklift API. Connection failures and
// non-2xx responses surface as TransportError so the loop treats an
// unreachable cluster as fatal rather than as a recoverable observation.
type Client struct {
	BaseURL string
	Token   string
	client  *http.Client
}

// NewClient builds a client for the given API endpoint.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Provider is a forklift source or target provider.
type Provider struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
	Type string `json:"type"`
}

// InventoryRef is a named object in a provider's inventory.
type InventoryRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &framework.TransportError{Op: "forklift " + method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &framework.TransportError{
			Op:  "forklift " + method + " " + path,
			Err: fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg)),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// LookupProvider resolves a provider by name.
func (c *Client) LookupProvider(ctx context.Context, namespace, name string) (*Provider, error) {
	var providers []Provider
	path := fmt.Sprintf("/providers?namespace=%s", namespace)
	if err := c.do(ctx, http.MethodGet, path, nil, &providers); err != nil {
		return nil, err
	}
	for i := range providers {
		if providers[i].Name == name {
			return &providers[i], nil
		}
	}
	return nil, fmt.Errorf("provider %s not found in namespace %s", name, namespace)
}

// LookupVM resolves a VM in the provider's inventory.
func (c *Client) LookupVM(ctx context.Context, providerUID, name string) (*InventoryRef, error) {
	return c.lookupInventory(ctx, providerUID, "vms", name)
}

// LookupNetwork resolves a network in the provider's inventory.
func (c *Client) LookupNetwork(ctx context.Context, providerUID, name string) (*InventoryRef, error) {
	return c.lookupInventory(ctx, providerUID, "networks", name)
}

// LookupDatastore resolves a datastore in the provider's inventory.
func (c *Client) LookupDatastore(ctx context.Context, providerUID, name string) (*InventoryRef, error) {
	return c.lookupInventory(ctx, providerUID, "datastores", name)
}

func (c *Client) lookupInventory(ctx context.Context, providerUID, kind, name string) (*InventoryRef, error) {
	var refs []InventoryRef
	path := fmt.Sprintf("/providers/%s/%s", providerUID, kind)
	if err := c.do(ctx, http.MethodGet, path, nil, &refs); err != nil {
		return nil, err
	}
	for i := range refs {
		if refs[i].Name == name {
			return &refs[i], nil
		}
	}
	return nil, fmt.Errorf("%s %s not found for provider %s", kind, name, providerUID)
}

// mapRequest creates a network or storage map between two providers.
type mapRequest struct {
	Name           string `json:"name"`
	Namespace      string `json:"namespace"`
	SourceProvider string `json:"source_provider"`
	TargetProvider string `json:"target_provider"`
	SourceID       string `json:"source_id"`
	Target         string `json:"target"`
}

// CreateNetworkMap maps a source network onto a target network.
func (c *Client) CreateNetworkMap(ctx context.Context, namespace, name, sourceProvider, targetProvider, sourceNetworkID, target string) error {
	return c.do(ctx, http.MethodPost, "/networkmaps", mapRequest{
		Name:           name,
		Namespace:      namespace,
		SourceProvider: sourceProvider,
		TargetProvider: targetProvider,
		SourceID:       sourceNetworkID,
		Target:         target,
	}, nil)
}

// CreateStorageMap maps a source datastore onto a target storage class.
func (c *Client) CreateStorageMap(ctx context.Context, namespace, name, sourceProvider, targetProvider, sourceDatastoreID, storageClass string) error {
	return c.do(ctx, http.MethodPost, "/storagemaps", mapRequest{
		Name:           name,
		Namespace:      namespace,
		SourceProvider: sourceProvider,
		TargetProvider: targetProvider,
		SourceID:       sourceDatastoreID,
		Target:         storageClass,
	}, nil)
}

// CreatePlan submits a validated migration plan.
func (c *Client) CreatePlan(ctx context.Context, plan *schemas.MigrationPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/plans", plan, nil)
}

// StartPlan creates the migration object that puts a plan in motion.
func (c *Client) StartPlan(ctx context.Context, namespace, planName string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/plans/%s/%s/start", namespace, planName), nil, nil)
}
