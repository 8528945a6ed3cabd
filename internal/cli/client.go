package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type JoinResult struct {
	TeamID       int    `json:"team_id"`
	ConnectionID string `json:"connection_id"`
}

func (c *Client) Join(ctx context.Context, teamName, connectionID string) (JoinResult, error) {
	var out JoinResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/teams/join", map[string]any{
		"team_name":     teamName,
		"connection_id": connectionID,
	}, &out)
	return out, err
}

func (c *Client) Submit(ctx context.Context, connectionID string, decisionIDs []string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/teams/submit", map[string]any{
		"connection_id": connectionID,
		"decision_ids":  decisionIDs,
	}, nil)
}

func (c *Client) Unsubmit(ctx context.Context, connectionID string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/teams/unsubmit", map[string]any{
		"connection_id": connectionID,
	}, nil)
}

func (c *Client) Disconnect(ctx context.Context, connectionID string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/teams/disconnect", map[string]any{
		"connection_id": connectionID,
	}, nil)
}

func (c *Client) State(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out)
	return out, err
}

func (c *Client) Decisions(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/decisions", nil, &out)
	return out, err
}

func (c *Client) Submissions(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/submissions", nil, &out)
	return out, err
}

func (c *Client) RoundResults(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/results/round", nil, &out)
	return out, err
}

func (c *Client) FinalResults(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/results/final", nil, &out)
	return out, err
}

func (c *Client) Histories(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/histories", nil, &out)
	return out, err
}

func (c *Client) AdminOp(ctx context.Context, op string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/admin/"+op, map[string]any{}, nil)
}

func (c *Client) TriggerEvent(ctx context.Context, description string) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/admin/event", map[string]any{
		"description": description,
	}, nil)
}

func (c *Client) Configure(ctx context.Context, teamCount, roundSeconds int) error {
	return c.jsonRequest(ctx, http.MethodPost, "/v1/admin/config", map[string]any{
		"team_count":    teamCount,
		"round_seconds": roundSeconds,
	}, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
