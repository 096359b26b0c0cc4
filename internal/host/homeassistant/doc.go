// Package homeassistant is a client for the Home Assistant core API.
//
// It implements the host collaborators the report generator reads from:
//
//   - Configuration registry: REST GET /api/config, WebSocket config_entries/get
//   - Integration loader: WebSocket manifest/get
//   - Custom component registry: WebSocket manifest/list (is_built_in false)
//   - Runtime facts: WebSocket system_health/info
//
// The WebSocket connection is opened lazily, authenticated with the
// long-lived access token and reused for subsequent commands. A failed
// command drops the connection; the next command reconnects.
//
// Usage:
//
//	client, err := homeassistant.New(homeassistant.Config{
//	    URL:     "http://homeassistant.local:8123",
//	    Token:   token,
//	    Timeout: 10 * time.Second,
//	}, log)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package homeassistant
