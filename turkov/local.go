package turkov

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LocalClient talks to a device directly over the LAN. Units expose a plain
// HTTP endpoint on port 80 serving the same state document the cloud relays.
type LocalClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLocalClient(host string, port int) (*LocalClient, error) {
	if host == "" {
		return nil, fmt.Errorf("host not set")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("port must be within [1:65535] range")
	}

	return &LocalClient{
		baseURL:    fmt.Sprintf("http://%v:%v", host, port),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// State fetches the raw state document from the device itself.
func (c *LocalClient) State(ctx context.Context) (map[string]any, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/state", nil)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var state map[string]any
	if err := json.NewDecoder(response.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("improper device data encoding: %w", err)
	}

	return state, nil
}

// SetValue writes a single key/value pair directly to the device.
func (c *LocalClient) SetValue(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/command", bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return fmt.Errorf("device returned %v", response.Status)
	}

	return nil
}
