package mcd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*httptest.Server, *RunStore) {
	t.Helper()
	store := NewRunStore()
	exec := NewRunExecutor(store, testDefaults())
	srv := httptest.NewServer(NewHTTPServer(store, exec).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v, expected status ok", body)
	}
}

func TestCreateRun(t *testing.T) {
	srv, store := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/runs", map[string]any{
		"run_id": "http-1",
		"input":  map[string]any{"method": "batch", "samples": 1000, "seed": 42},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, expected 201: %v", resp.StatusCode, body)
	}

	run := body["run"].(map[string]any)
	if run["id"] != "http-1" {
		t.Errorf("id = %v, expected http-1", run["id"])
	}
	if run["status"] != "pending" {
		t.Errorf("status = %v, expected pending", run["status"])
	}

	if _, ok := store.Get("http-1"); !ok {
		t.Error("run not in store")
	}
}

func TestCreateRunErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"missing input", map[string]any{"run_id": "x"}, http.StatusBadRequest},
		{"bad method", map[string]any{"input": map[string]any{"method": "simd", "samples": 10}}, http.StatusBadRequest},
		{"negative samples", map[string]any{"input": map[string]any{"samples": -1}}, http.StatusBadRequest},
		{"bad run id", map[string]any{"run_id": "a/b", "input": map[string]any{"samples": 10}}, http.StatusBadRequest},
		{"fractional samples", map[string]any{"input": map[string]any{"samples": 10.5}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/runs", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, expected %d: %v", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}
}

func TestCreateRunDuplicateConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	payload := map[string]any{
		"run_id": "dup",
		"input":  map[string]any{"samples": 10},
	}
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/runs", payload); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: status = %d", resp.StatusCode)
	}
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/runs", payload)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create: status = %d, expected 409", resp.StatusCode)
	}
}

func TestListRuns(t *testing.T) {
	srv, store := newTestServer(t)
	for i := 0; i < 3; i++ {
		store.Create(fmt.Sprintf("run-%d", i), &RunInput{Method: "batch", Samples: 10})
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/runs?limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
	runs := body["runs"].([]any)
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["limit"].(float64) != 2 {
		t.Errorf("pagination = %v", pagination)
	}
}

func TestListRunsBadStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/runs?status=bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", resp.StatusCode)
	}
}

func TestGetRun(t *testing.T) {
	srv, store := newTestServer(t)
	store.Create("run-1", &RunInput{Method: "loop", Samples: 10})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/runs/run-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
	input := body["input"].(map[string]any)
	if input["method"] != "loop" {
		t.Errorf("input method = %v, expected loop", input["method"])
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/runs/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing run: status = %d, expected 404", resp.StatusCode)
	}
}

func TestStartAndStopEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	store.Create("run-1", &RunInput{Method: "loop", Samples: 500_000_000, Seed: 1, ChunkSize: 1024})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v1/runs/run-1:start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: status = %d: %v", resp.StatusCode, body)
	}
	run := body["run"].(map[string]any)
	if run["status"] != "running" {
		t.Errorf("status = %v, expected running", run["status"])
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v1/runs/run-1:stop", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop: status = %d: %v", resp.StatusCode, body)
	}
	run = body["run"].(map[string]any)
	if run["status"] != "cancelled" {
		t.Errorf("status = %v, expected cancelled", run["status"])
	}
}

func TestStartEndpointErrors(t *testing.T) {
	srv, store := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/runs/missing:start", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing: status = %d, expected 404", resp.StatusCode)
	}

	store.Create("done", &RunInput{Method: "batch", Samples: 10})
	store.SetStatus("done", "completed", "")
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/runs/done:start", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("terminal: status = %d, expected 409", resp.StatusCode)
	}
}

func TestResultEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	store.Create("run-1", &RunInput{Method: "batch", Samples: 10})

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/runs/run-1/result", nil)
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Errorf("no result yet: status = %d, expected 412", resp.StatusCode)
	}
}

func TestCreateStartResultRoundTrip(t *testing.T) {
	srv, store := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v1/runs", map[string]any{
		"run_id": "rt-1",
		"input":  map[string]any{"method": "batch", "samples": 100_000, "seed": 42},
		"start":  true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create+start: status = %d", resp.StatusCode)
	}

	waitForTerminal(t, store, "rt-1", 10*time.Second)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v1/runs/rt-1/result", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("result: status = %d: %v", resp.StatusCode, body)
	}
	result := body["result"].(map[string]any)
	estimate := result["estimate"].(float64)
	analytical := body["analytical"].(float64)
	if diff := estimate - analytical; diff > 0.01 || diff < -0.01 {
		t.Errorf("estimate %f too far from analytical %f", estimate, analytical)
	}
}

func TestTimeSeriesEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/runs/missing/metrics/timeseries", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing run: status = %d, expected 404", resp.StatusCode)
	}

	store.Create("run-1", &RunInput{Method: "batch", Samples: 10})
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/runs/run-1/metrics/timeseries", nil)
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Errorf("no collector: status = %d, expected 412", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/v1/runs", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/runs/x:start", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, expected 405", resp.StatusCode)
	}
}
