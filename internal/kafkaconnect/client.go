// Package kafkaconnect deploys a compiled connector artifact to a running
// Kafka Connect REST API (spec.md §6 "deploy collaborator").
package kafkaconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/dag"
)

// Client talks to a single Kafka Connect worker's REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client against baseURL (e.g. "http://connect:8083").
// Its HTTPClient is an http.Client with a 30s timeout.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: &http.Client{Timeout: 30 * time.Second}}
}

// upsertConnectorRequest is the Kafka Connect REST payload for
// `PUT /connectors/<name>/config`.
type upsertConnectorRequest map[string]string

// DeployConnector implements engine.ConnectorDeployer: it PUTs n's compiled
// config to `/connectors/<name>/config`, which Kafka Connect treats as
// create-or-update.
func (c *Client) DeployConnector(ctx context.Context, n *dag.Node) error {
	conn, ok := n.Data.(*catalog.ConnectorDecl)
	if !ok {
		return fmt.Errorf("connector node %q carries no ConnectorDecl", n.Name)
	}

	cfg, err := ParseFlatConfig(n.CompiledArtifact)
	if err != nil {
		return fmt.Errorf("connector %q: %w", conn.Name, err)
	}

	body, err := json.Marshal(upsertConnectorRequest(cfg))
	if err != nil {
		return fmt.Errorf("connector %q: marshaling config: %w", conn.Name, err)
	}

	url := fmt.Sprintf("%s/connectors/%s/config", c.BaseURL, conn.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("connector %q: building request: %w", conn.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("connector %q: deploying: %w", conn.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("connector %q: kafka connect returned status %d", conn.Name, resp.StatusCode)
	}
	return nil
}
