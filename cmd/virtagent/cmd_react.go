package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gsampaio-rh/virt-llm-agents/agents"
	"github.com/gsampaio-rh/virt-llm-agents/framework"
)

// newReactCmd runs one reasoning session and prints the transcript.
func newReactCmd() *cobra.Command {
	var showTranscript bool
	cmd := &cobra.Command{
		Use:   "react [request]",
		Short: "Run a single reasoning session against the configured model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := strings.Join(args, " ")
			telemetry, closeTelemetry, err := newTelemetry()
			if err != nil {
				return err
			}
			defer closeTelemetry()

			registry, err := newToolRegistry()
			if err != nil {
				return err
			}
			pad := framework.NewScratchpad()
			loop := &framework.ReactLoop{
				Model:      newModelClient(telemetry),
				Tools:      registry,
				Composer:   newComposer(),
				Scratchpad: pad,
				MaxSteps:   cfg.MaxSteps,
				Telemetry:  telemetry,
				Debug:      flagDebug,
			}

			printf("%s", renderRequest(request))
			result, err := loop.Run(cmd.Context(), request)
			if showTranscript {
				printf("%s", renderTranscript(pad))
			}
			if err != nil {
				return err
			}
			printf("%s", renderAnswer(agents.TrimAnswerPrefix(result.Answer)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTranscript, "transcript", true, "print the full reasoning transcript")
	return cmd
}
