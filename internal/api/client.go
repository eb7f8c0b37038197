// Package api implements the HTTP gateway to the VTab Square attendance
// server (API v2).
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

	"github.com/vtabsquare/attendance-agent/internal/domain/attendance"
)

const defaultTimeout = 20 * time.Second

// Client talks to the attendance endpoints under a configured base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Status implements attendance.Gateway.
func (c *Client) Status(ctx context.Context, employeeID, timezone string) (*attendance.StatusResponse, error) {
	endpoint := fmt.Sprintf("%s/api/v2/attendance/status/%s?timezone=%s",
		c.baseURL, url.PathEscape(employeeID), url.QueryEscape(timezone))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", attendance.ErrStatusFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrStatusFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", attendance.ErrStatusFetch, resp.StatusCode)
	}

	var status attendance.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", attendance.ErrStatusFetch, err)
	}
	if !status.Success {
		return nil, fmt.Errorf("%w: server reported failure", attendance.ErrStatusFetch)
	}

	return &status, nil
}

// CheckIn implements attendance.Gateway.
func (c *Client) CheckIn(ctx context.Context, req attendance.CommandRequest) (*attendance.CommandResponse, error) {
	return c.postCommand(ctx, "/api/v2/attendance/checkin", req)
}

// CheckOut implements attendance.Gateway.
func (c *Client) CheckOut(ctx context.Context, req attendance.CommandRequest) (*attendance.CommandResponse, error) {
	return c.postCommand(ctx, "/api/v2/attendance/checkout", req)
}

func (c *Client) postCommand(ctx context.Context, path string, cmd attendance.CommandRequest) (*attendance.CommandResponse, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the log line, then discard.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", attendance.ErrServerRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result attendance.CommandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", attendance.ErrServerRejected, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: server reported failure", attendance.ErrServerRejected)
	}

	return &result, nil
}
