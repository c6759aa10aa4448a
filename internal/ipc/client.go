package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Client forwards commands to the unix socket of a running instance.
type Client struct {
	http *http.Client
}

func NewClient(socketPath string, timeout time.Duration) *Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// The host is ignored by the unix transport but required by net/http.
const baseURL = "http://spotbeam"

// SendCommand executes one command string on the running instance.
func (c *Client) SendCommand(ctx context.Context, cmd string) error {
	body, err := json.Marshal(CommandRequest{Command: cmd})
	if err != nil {
		return errors.Wrap(err, "failed to encode command")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/command", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build command request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to reach running instance")
	}
	defer resp.Body.Close()

	var result CommandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrap(err, "invalid response from running instance")
	}

	if result.Status != "ok" {
		return errors.Errorf("command rejected: %s", result.Error)
	}

	return nil
}

// Status fetches the running instance's status document.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/status", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build status request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reach running instance")
	}
	defer resp.Body.Close()

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, errors.Wrap(err, "invalid status response")
	}

	return status, nil
}
