package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pefman/w40k-sim/internal/runlog"
)

// Client talks to a running cmd/api server.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// simulations of a million trials take a while
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var eb ErrorBody
		if json.NewDecoder(resp.Body).Decode(&eb) == nil && eb.Message != "" {
			return fmt.Errorf("api status %d: %s", resp.StatusCode, eb.Message)
		}
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health checks /api/healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/healthz", nil, nil)
}

// Run executes a simulation on the server.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResponse, error) {
	var out RunResponse
	err := c.do(ctx, http.MethodPost, "/api/sim/run", req, &out)
	return out, err
}

// Shoot resolves a single explained trial.
func (c *Client) Shoot(ctx context.Context, req RunRequest) (ShootResponse, error) {
	var out ShootResponse
	err := c.do(ctx, http.MethodPost, "/api/sim/shoot", req, &out)
	return out, err
}

// GetRun fetches a stored run record.
func (c *Client) GetRun(ctx context.Context, id string) (runlog.Record, error) {
	var out runlog.Record
	err := c.do(ctx, http.MethodGet, "/api/runs/"+url.PathEscape(id), nil, &out)
	return out, err
}
