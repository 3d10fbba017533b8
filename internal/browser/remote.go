package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// versionInfo is the subset of the DevTools /json/version document we need
type versionInfo struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ResolveWebSocketURL returns the browser debugger URL for a DevTools endpoint.
// ws:// and wss:// URLs are returned unchanged; http(s) endpoints are queried at
// /json/version.
func ResolveWebSocketURL(ctx context.Context, client *http.Client, endpoint string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing remote URL: %w", err)
	}

	switch parsed.Scheme {
	case "ws", "wss":
		return endpoint, nil
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported remote URL scheme: %q", parsed.Scheme)
	}

	if client == nil {
		client = http.DefaultClient
	}

	versionURL := strings.TrimSuffix(endpoint, "/") + "/json/version"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", versionURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from %s: %d", versionURL, resp.StatusCode)
	}

	var info versionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding version info: %w", err)
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("no webSocketDebuggerUrl in %s", versionURL)
	}

	return info.WebSocketDebuggerURL, nil
}
