// Package llm implements the model backend consumed by the reasoning loop.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gsampaio-rh/virt-llm-agents/framework"
)

// Options carries the decoding parameters sent with every generate request.
type Options struct {
	Temperature       float64  `yaml:"temperature"`
	TopP              float64  `yaml:"top_p"`
	TopK              int      `yaml:"top_k"`
	RepetitionPenalty float64  `yaml:"repetition_penalty"`
	Stop              []string `yaml:"stop"`
}

// DefaultOptions mirrors the greedy defaults of the original service.
func DefaultOptions() Options {
	return Options{Temperature: 0.0, TopP: 1.0, TopK: 0, RepetitionPenalty: 1.0}
}

// Client implements framework.ModelClient against an Ollama endpoint. The
// loop treats it as an opaque request/response function; transport failures
// surface as typed errors and are never retried here.
type Client struct {
	Endpoint string
	Model    string
	Options  Options
	Debug    bool
	client   *http.Client
}

// NewClient builds a client for the given endpoint and model.
func NewClient(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &Client{
		Endpoint: endpoint,
		Model:    model,
		Options:  DefaultOptions(),
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

// generatePayload is the /api/generate request body.
type generatePayload struct {
	Model             string   `json:"model"`
	Format            string   `json:"format"`
	Prompt            string   `json:"prompt"`
	System            string   `json:"system"`
	Stream            bool     `json:"stream"`
	Temperature       float64  `json:"temperature"`
	TopP              float64  `json:"top_p"`
	TopK              int      `json:"top_k"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
	Stop              []string `json:"stop,omitempty"`
}

// generateResponse is the subset of the /api/generate reply we consume. The
// response field is itself the model's structured output and is handed to
// the contract layer verbatim.
type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate renders one completion for the prompt pair. Non-2xx statuses and
// connection failures become TransportError; an empty body is the distinct
// ErrEmptyModelResponse condition.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := generatePayload{
		Model:             c.Model,
		Format:            "json",
		Prompt:            userPrompt,
		System:            systemPrompt,
		Stream:            false,
		Temperature:       c.Options.Temperature,
		TopP:              c.Options.TopP,
		TopK:              c.Options.TopK,
		RepetitionPenalty: c.Options.RepetitionPenalty,
		Stop:              c.Options.Stop,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	c.logf("request /api/generate payload: %s", truncate(string(body), 2048))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", &framework.TransportError{Op: "ollama generate", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(msg))
		if detail == "" {
			detail = resp.Status
		} else {
			detail = resp.Status + ": " + detail
		}
		return "", &framework.TransportError{Op: "ollama generate", Err: fmt.Errorf("%s", detail)}
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &framework.TransportError{Op: "ollama generate", Err: err}
	}
	if len(bytes.TrimSpace(responseBody)) == 0 {
		return "", framework.ErrEmptyModelResponse
	}
	c.logf("response /api/generate payload: %s", truncate(string(responseBody), 2048))

	var decoded generateResponse
	if err := json.Unmarshal(responseBody, &decoded); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if decoded.Error != "" {
		return "", &framework.TransportError{Op: "ollama generate", Err: fmt.Errorf("%s", decoded.Error)}
	}
	return decoded.Response, nil
}

func (c *Client) getHTTPClient() *http.Client {
	if c.client != nil {
		return c.client
	}
	c.client = &http.Client{Timeout: 60 * time.Second}
	return c.client
}

func (c *Client) logf(format string, args ...interface{}) {
	if !c.Debug {
		return
	}
	log.Printf("[ollama] "+format, args...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
