package main

import (
	"log"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gsampaio-rh/virt-llm-agents/agents"
	"github.com/gsampaio-rh/virt-llm-agents/persistence"
	"github.com/gsampaio-rh/virt-llm-agents/server"
	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

// newServeCmd exposes the react and workflow operations over HTTP and,
// optionally, JSON-RPC.
func newServeCmd() *cobra.Command {
	var httpAddr, rpcAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent API over HTTP and JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			telemetry, closeTelemetry, err := newTelemetry()
			if err != nil {
				return err
			}
			defer closeTelemetry()

			registry, err := newToolRegistry()
			if err != nil {
				return err
			}
			agent := &agents.ReactAgent{
				Role:      "inventory",
				Model:     newModelClient(telemetry),
				Tools:     registry,
				Composer:  newComposer(),
				MaxSteps:  cfg.MaxSteps,
				Telemetry: telemetry,
				Debug:     flagDebug,
			}

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

			service := &server.Service{
				Agent:            agent,
				Runner:           runner,
				DefaultStepLimit: cfg.MaxSteps,
			}

			if rpcAddr != "" {
				listener, err := net.Listen("tcp", rpcAddr)
				if err != nil {
					return err
				}
				rpc := &server.RPCServer{Service: service}
				go func() {
					log.Printf("rpc listening on %s", rpcAddr)
					if err := rpc.ServeListener(cmd.Context(), listener); err != nil {
						log.Printf("rpc server stopped: %v", err)
					}
				}()
			}

			log.Printf("http listening on %s", httpAddr)
			return http.ListenAndServe(httpAddr, server.NewHTTPHandler(service))
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&rpcAddr, "rpc-addr", "", "JSON-RPC listen address (disabled when empty)")
	return cmd
}
