// Package server exposes agent and workflow execution over HTTP and
// JSON-RPC 2.0.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/gsampaio-rh/virt-llm-agents/agents"
	"github.com/gsampaio-rh/virt-llm-agents/framework"
	"github.com/gsampaio-rh/virt-llm-agents/workflow"
)

// Service bundles the runnable surfaces behind both transports.
type Service struct {
	Agent  *agents.ReactAgent
	Runner *workflow.Runner

	// DefaultStepLimit is applied when a request does not carry its own.
	DefaultStepLimit int
}

// ReactRequest asks for one reasoning session.
type ReactRequest struct {
	Request  string `json:"request"`
	MaxSteps int    `json:"max_steps,omitempty"`
}

// ReactResponse carries the session result.
type ReactResponse struct {
	Answer string `json:"answer"`
	Steps  int    `json:"steps"`
}

// WorkflowRequest asks for one pipeline run.
type WorkflowRequest struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id,omitempty"`
	StepLimit int    `json:"step_limit,omitempty"`
}

// WorkflowResponse carries the final state.
type WorkflowResponse struct {
	SessionID string         `json:"session_id"`
	State     workflow.State `json:"state"`
}

// React runs a single reasoning session.
func (s *Service) React(ctx context.Context, req ReactRequest) (*ReactResponse, error) {
	if req.Request == "" {
		return nil, errors.New("request text is required")
	}
	agent := *s.Agent
	if req.MaxSteps > 0 {
		agent.MaxSteps = req.MaxSteps
	} else if agent.MaxSteps <= 0 {
		agent.MaxSteps = s.DefaultStepLimit
	}
	result, err := agent.Run(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	return &ReactResponse{Answer: agents.TrimAnswerPrefix(result.Answer), Steps: result.Steps}, nil
}

// Workflow runs the pipeline, minting a session ID when the caller does not
// supply one.
func (s *Service) Workflow(ctx context.Context, req WorkflowRequest) (*WorkflowResponse, error) {
	if req.Input == "" {
		return nil, errors.New("input text is required")
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	stepLimit := req.StepLimit
	if stepLimit <= 0 {
		stepLimit = s.DefaultStepLimit
	}
	state, err := s.Runner.Run(ctx, req.Input, sessionID, stepLimit)
	if err != nil {
		return nil, err
	}
	return &WorkflowResponse{SessionID: sessionID, State: state}, nil
}

// NewHTTPHandler builds the HTTP mux over the service.
func NewHTTPHandler(service *Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/react", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req ReactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		log.Printf("api react request: %q", req.Request)
		resp, err := service.React(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resp)
	})
	mux.HandleFunc("/api/workflow", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req WorkflowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		log.Printf("api workflow session=%s", req.SessionID)
		resp, err := service.Workflow(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resp)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: unreachable
// backends are 502, an exhausted budget is 422, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var transport *framework.TransportError
	var stepLimit *framework.StepLimitError
	switch {
	case errors.As(err, &transport):
		status = http.StatusBadGateway
	case errors.As(err, &stepLimit):
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
