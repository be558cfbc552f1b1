package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gsampaio-rh/virt-llm-agents/agents"
	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/persistence"
	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

// newWorkflowCmd groups the pipeline subcommands.
func newWorkflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run and inspect checkpointed agent pipelines",
	}
	cmd.AddCommand(newWorkflowRunCmd())
	cmd.AddCommand(newCheckpointCmd())
	return cmd
}

// buildStages assembles the default migration-assessment pipeline: a
// loop-backed inventory stage followed by a single-shot report stage that
// summarizes the inventory findings.
func buildStages(telemetry framework.Telemetry) ([]workflow.Stage, error) {
	registry, err := newToolRegistry()
	if err != nil {
		return nil, err
	}
	inventory := &agents.ReactAgent{
		Role:      "inventory",
		Model:     newModelClient(telemetry),
		Tools:     registry,
		Composer:  newComposer(),
		MaxSteps:  cfg.MaxSteps,
		Telemetry: telemetry,
		Debug:     flagDebug,
	}
	report := &agents.BasicAgent{
		Role:       "report",
		Model:      newModelClient(telemetry),
		Composer:   newComposer(),
		SourceSlot: agents.ResponseSlot(inventory.Role),
	}
	return []workflow.Stage{inventory.Stage(), report.Stage()}, nil
}

func newWorkflowRunCmd() *cobra.Command {
	var sessionID string
	var stepLimit int
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Run the migration-assessment pipeline, resuming from any checkpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			telemetry, closeTelemetry, err := newTelemetry()
			if err != nil {
				return err
			}
			defer closeTelemetry()

			store, err := persistence.NewSQLiteCheckpointStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			stages, err := buildStages(telemetry)
			if err != nil {
				return err
			}
			runner, err := workflow.NewRunner(stages, store)
			if err != nil {
				return err
			}
			runner.Telemetry = telemetry

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			if stepLimit <= 0 {
				stepLimit = len(stages)
			}
			printf("session: %s\n", sessionID)
			state, err := runner.Run(cmd.Context(), input, sessionID, stepLimit)
			if err != nil {
				return err
			}
			for _, stage := range stages {
				slot := agents.ResponseSlot(stage.Name)
				if value, ok := state[slot].(string); ok {
					printf("\n[%s]\n%s\n", stage.Name, value)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID; reuse one to resume an interrupted run")
	cmd.Flags().IntVar(&stepLimit, "step-limit", 0, "maximum stages to execute this invocation")
	return cmd
}

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect stored workflow checkpoints",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions with stored checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := persistence.NewSQLiteCheckpointStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			sessions, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range sessions {
				printf("%s\n", id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [session]",
		Short: "Print a session's checkpointed state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := persistence.NewSQLiteCheckpointStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			checkpoint, found, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no checkpoint for session %s", args[0])
			}
			encoded, err := json.MarshalIndent(checkpoint, "", "  ")
			if err != nil {
				return err
			}
			printf("%s\n", encoded)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [session]",
		Short: "Delete a session's checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := persistence.NewSQLiteCheckpointStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	})

	return cmd
}
