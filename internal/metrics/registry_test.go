package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistryExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	reg.SetSessions(3)
	reg.IncFailedAccepts()
	reg.AddReceivedBytes(100)
	reg.AddSentBytes(50)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"net_server_sessions 3",
		"net_server_failed_accepts 1",
		"net_server_received_bytes 100",
		"net_server_sent_bytes 50",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestTwoRegistriesDoNotCollide(t *testing.T) {
	// A private prometheus.Registry per instance means constructing two
	// Registry values in the same process (e.g. across parallel tests) must
	// never panic on duplicate metric registration.
	r1 := NewRegistry()
	r2 := NewRegistry()

	r1.SetSessions(1)
	r2.SetSessions(2)
}
