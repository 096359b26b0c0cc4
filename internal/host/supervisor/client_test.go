package supervisor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/integration-list-exporter/internal/host"
)

// supervisorAPI serves canned Supervisor responses keyed by path.
func supervisorAPI(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sup-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"result":"error","message":"Unauthorized"}`))
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, url, token string) *Client {
	t.Helper()
	c, err := New(Config{URL: url, Token: token, Timeout: 2 * time.Second, RetryMax: 0}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

var fullRoutes = map[string]string{
	"/supervisor/ping": `{"result":"ok","data":{}}`,
	"/info":            `{"result":"ok","data":{"arch":"aarch64","docker":"27.2.0","operating_system":"Home Assistant OS 16.2","hostname":"homeassistant"}}`,
	"/supervisor/info": `{"result":"ok","data":{"version":"2025.10.0","version_latest":"2025.10.0","channel":"stable"}}`,
	"/host/info":       `{"result":"ok","data":{"operating_system":"Home Assistant OS 16.2","deployment":"production","chassis":"embedded","agent_version":"1.7.2","disk_total":28.0,"disk_used":9.5,"disk_free":18.5}}`,
	"/os/info":         `{"result":"ok","data":{"version":"16.2","board":"rpi4-64"}}`,
	"/core/info":       `{"result":"ok","data":{"version":"2025.10.1","machine":"raspberrypi4-64"}}`,
	"/addons":          `{"result":"ok","data":{"addons":[{"name":"File editor","slug":"core_configurator","version":"5.8.0"},{"slug":"local_custom"}]}}`,
}

func TestNew_MissingURL(t *testing.T) {
	if _, err := New(Config{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestClient_Queries(t *testing.T) {
	srv := supervisorAPI(t, fullRoutes)
	c := newTestClient(t, srv.URL, "sup-token")
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	info, err := c.Info(ctx)
	if err != nil || info.Arch != "aarch64" || info.Docker != "27.2.0" {
		t.Errorf("Info() = %+v, %v", info, err)
	}

	sup, err := c.SupervisorInfo(ctx)
	if err != nil || sup.Channel != "stable" || sup.Version != "2025.10.0" {
		t.Errorf("SupervisorInfo() = %+v, %v", sup, err)
	}

	hi, err := c.HostInfo(ctx)
	if err != nil {
		t.Fatalf("HostInfo() error = %v", err)
	}
	if hi.Deployment != "production" || hi.AgentVersion != "1.7.2" {
		t.Errorf("HostInfo() = %+v", hi)
	}
	if hi.DiskTotal == nil || *hi.DiskTotal != 28.0 || hi.DiskFree == nil || *hi.DiskFree != 18.5 {
		t.Errorf("HostInfo() disk = %v / %v", hi.DiskTotal, hi.DiskFree)
	}

	osInfo, err := c.OSInfo(ctx)
	if err != nil || osInfo.Board != "rpi4-64" {
		t.Errorf("OSInfo() = %+v, %v", osInfo, err)
	}

	core, err := c.CoreInfo(ctx)
	if err != nil || core.Machine != "raspberrypi4-64" {
		t.Errorf("CoreInfo() = %+v, %v", core, err)
	}

	addons, err := c.Addons(ctx)
	if err != nil {
		t.Fatalf("Addons() error = %v", err)
	}
	want := []host.Addon{
		{Name: "File editor", Slug: "core_configurator", Version: "5.8.0"},
		{Slug: "local_custom"},
	}
	if len(addons) != len(want) {
		t.Fatalf("Addons() = %+v, want %+v", addons, want)
	}
	for i := range want {
		if addons[i] != want[i] {
			t.Errorf("Addons()[%d] = %+v, want %+v", i, addons[i], want[i])
		}
	}
}

func TestClient_MissingDiskValues(t *testing.T) {
	srv := supervisorAPI(t, map[string]string{
		"/host/info": `{"result":"ok","data":{"operating_system":"Debian GNU/Linux 12"}}`,
	})
	c := newTestClient(t, srv.URL, "sup-token")

	hi, err := c.HostInfo(context.Background())
	if err != nil {
		t.Fatalf("HostInfo() error = %v", err)
	}
	if hi.DiskTotal != nil || hi.DiskUsed != nil || hi.DiskFree != nil {
		t.Errorf("disk values = %v/%v/%v, want nil", hi.DiskTotal, hi.DiskUsed, hi.DiskFree)
	}
}

func TestClient_Errors(t *testing.T) {
	srv := supervisorAPI(t, map[string]string{
		"/os/info": `{"result":"error","message":"No Home Assistant OS available"}`,
	})

	tests := []struct {
		name  string
		token string
		call  func(c *Client) error
		want  error
	}{
		{
			name:  "result error",
			token: "sup-token",
			call:  func(c *Client) error { _, err := c.OSInfo(context.Background()); return err },
			want:  ErrRequestFailed,
		},
		{
			name:  "unauthorized",
			token: "wrong",
			call:  func(c *Client) error { return c.Ping(context.Background()) },
			want:  ErrUnexpectedStatus,
		},
		{
			name:  "not found",
			token: "sup-token",
			call:  func(c *Client) error { _, err := c.CoreInfo(context.Background()); return err },
			want:  ErrUnexpectedStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, srv.URL, tt.token)
			if err := tt.call(c); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"result":"ok","data":{}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, RetryMax: 2}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, "sup-token")
	if err := c.Ping(context.Background()); !errors.Is(err, host.ErrUnavailable) {
		t.Errorf("Ping() error = %v, want host.ErrUnavailable", err)
	}
}
