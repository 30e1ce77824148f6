package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pefman/w40k-sim/internal/runlog"
	"github.com/pefman/w40k-sim/internal/sim"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /api/sim/run", func(w http.ResponseWriter, r *http.Request) {
		var req RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Attacker == "Nobody" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorBody{Error: "Not Found", Message: `unknown unit: "Nobody"`, Status: 404})
			return
		}
		_ = json.NewEncoder(w).Encode(RunResponse{
			ID:      "run-1",
			Summary: sim.Summary{Attacker: req.Attacker, Defender: req.Defender, Iterations: req.Iterations},
		})
	})
	mux.HandleFunc("GET /api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "run-1" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_ = json.NewEncoder(w).Encode(runlog.Record{ID: "run-1", Duration: "1ms"})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestClient(t *testing.T) {
	ts := fakeServer(t)
	c := NewClient(ts.URL + "/")
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}

	resp, err := c.Run(ctx, RunRequest{Attacker: "A", Defender: "B", Iterations: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.ID != "run-1" || resp.Summary.Attacker != "A" || resp.Summary.Iterations != 10 {
		t.Fatalf("resp = %+v", resp)
	}

	rec, err := c.GetRun(ctx, "run-1")
	if err != nil || rec.Duration != "1ms" {
		t.Fatalf("GetRun = %+v, %v", rec, err)
	}
}

func TestClient_Errors(t *testing.T) {
	c := NewClient(fakeServer(t).URL)
	ctx := context.Background()

	_, err := c.Run(ctx, RunRequest{Attacker: "Nobody"})
	if err == nil || !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "unknown unit") {
		t.Fatalf("err = %v", err)
	}
	// non-JSON error bodies still report the status
	if _, err := c.GetRun(ctx, "other"); err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("err = %v", err)
	}
}
