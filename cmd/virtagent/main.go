// Command virtagent runs LLM-driven virtualization migration agents: a
// single reasoning session, a checkpointed multi-stage workflow, or a server
// exposing both.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/llm"
	"github.com/gsampaio-rh/virt-llm-agents/tools/openshift"
	"github.com/gsampaio-rh/virt-llm-agents/tools/vsphere"
)

var (
	flagConfig   string
	flagModel    string
	flagEndpoint string
	flagMaxSteps int
	flagDebug    bool

	cfg Config
)

func main() {
	root := &cobra.Command{
		Use:           "virtagent",
		Short:         "LLM agents for VM inventory analysis and migration planning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			explicit := cmd.Flags().Changed("config")
			loaded, err := loadConfig(flagConfig, explicit)
			if err != nil {
				return err
			}
			cfg = loaded
			if flagModel != "" {
				cfg.Model = flagModel
			}
			if flagEndpoint != "" {
				cfg.Endpoint = flagEndpoint
			}
			if flagMaxSteps > 0 {
				cfg.MaxSteps = flagMaxSteps
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", envOrDefault("VIRTAGENT_CONFIG", "virtagent.yaml"), "path to the YAML config file")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "model name served by the Ollama endpoint")
	root.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "Ollama endpoint URL")
	root.PersistentFlags().IntVar(&flagMaxSteps, "max-steps", 0, "reasoning step ceiling per session")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable prompt and dispatch logging")

	root.AddCommand(newReactCmd())
	root.AddCommand(newWorkflowCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newModelClient builds the configured Ollama client.
func newModelClient(telemetry framework.Telemetry) framework.ModelClient {
	client := llm.NewClient(cfg.Endpoint, cfg.Model)
	client.Options = cfg.Options
	client.Debug = flagDebug
	if telemetry == nil {
		return client
	}
	return llm.NewInstrumentedModel(client, telemetry)
}

// newToolRegistry wires the inventory tools and, when a forklift endpoint is
// configured, the migration-plan tools.
func newToolRegistry() (*framework.ToolRegistry, error) {
	registry := framework.NewToolRegistry()
	dialer := &vsphere.FixtureDialer{VMs: vsphere.DemoInventory()}
	for _, tool := range []framework.Tool{
		&vsphere.ListVMsTool{Dialer: dialer},
		&vsphere.VMDetailsTool{Dialer: dialer},
	} {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	if cfg.Forklift.URL != "" {
		client := openshift.NewClient(cfg.Forklift.URL, cfg.Forklift.Token)
		planTools := []framework.Tool{
			&openshift.CreatePlanTool{
				Client:          client,
				Namespace:       cfg.Forklift.Namespace,
				SourceProvider:  cfg.Forklift.SourceProvider,
				TargetProvider:  cfg.Forklift.TargetProvider,
				SourceNetwork:   cfg.Forklift.SourceNetwork,
				TargetNetwork:   cfg.Forklift.TargetNetwork,
				SourceDatastore: cfg.Forklift.SourceDatastore,
				StorageClass:    cfg.Forklift.StorageClass,
			},
			&openshift.StartPlanTool{Client: client, Namespace: cfg.Forklift.Namespace},
		}
		for _, tool := range planTools {
			if err := registry.Register(tool); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}

// newTelemetry builds the configured sink, or nil when tracing is off.
func newTelemetry() (framework.Telemetry, func(), error) {
	if cfg.TelemetryPath == "" {
		return nil, func() {}, nil
	}
	sink, err := framework.NewJSONFileTelemetry(cfg.TelemetryPath)
	if err != nil {
		return nil, nil, err
	}
	return sink, func() { sink.Close() }, nil
}

// newComposer builds the prompt composer with the current date pinned for
// the whole session.
func newComposer() *framework.PromptComposer {
	return framework.NewPromptComposer(framework.Environment{
		CurrentDate: framework.CurrentUTCTimestamp(),
	})
}
