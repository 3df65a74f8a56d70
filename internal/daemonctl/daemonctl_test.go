package daemonctl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsroom/internal/api"
	"newsroom/internal/daemonctl"
	"newsroom/internal/pipeline"
	"newsroom/internal/stage"
)

func TestClientStatusSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{Running: true, PID: 42, Schedule: "manual"})
	}))
	defer srv.Close()

	status, err := daemonctl.NewClientFor(srv.URL, "tok").Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 42 {
		t.Fatalf("unexpected status %+v", status)
	}

	_, err = daemonctl.NewClientFor(srv.URL, "").Status(context.Background())
	var statusErr *daemonctl.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized || statusErr.Message != "unauthorized" {
		t.Fatalf("expected unauthorized status error, got %v", err)
	}
}

func TestClientHealthToleratesUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(api.HealthResponse{Checks: []stage.Health{stage.Unhealthy("Store", "locked")}})
	}))
	defer srv.Close()

	health, err := daemonctl.NewClientFor(srv.URL, "").Health(context.Background(), false)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Ready || len(health.Checks) != 1 || health.Checks[0].Detail != "locked" {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestClientRunPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count != 3 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(pipeline.RunReport{RunID: "run-1", Discovered: 3})
	}))
	defer srv.Close()

	report, err := daemonctl.NewClientFor(srv.URL, "").RunPipeline(context.Background(), 3)
	if err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}
	if report.RunID != "run-1" || report.Discovered != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestProcessInfoWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := daemonctl.NewClientFor(url, "")
	running, pid, err := daemonctl.ProcessInfo(context.Background(), client)
	if err != nil || running || pid != 0 {
		t.Fatalf("expected not running, got %v %d %v", running, pid, err)
	}
	if err := daemonctl.WaitForShutdown(context.Background(), client, time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
	stopped, err := daemonctl.Stop(context.Background(), client, time.Second)
	if err != nil || stopped {
		t.Fatalf("expected no-op stop, got %v %v", stopped, err)
	}
}
