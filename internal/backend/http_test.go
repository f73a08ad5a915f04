package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", srv.Client(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestProcesses(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/processes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"pid":1,"name":"init","cpu_percent":0.5,"memory_percent":0.1,"user":"root","threads":1,"start_time":"2024-01-01 00:00:00"},
			{"pid":2,"name":null,"cpu_percent":null}
		]`))
	}))

	recs, err := c.Processes(context.Background())
	if err != nil {
		t.Fatalf("Processes: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Name != "init" || recs[0].User != "root" || recs[0].CPUPercent != 0.5 {
		t.Fatalf("record 0 = %+v", recs[0])
	}
	if recs[1].Name != "" || recs[1].CPUPercent != 0 || recs[1].Threads != 0 {
		t.Fatalf("record with missing fields = %+v, want zero values", recs[1])
	}
}

func TestKillAndPriority(t *testing.T) {
	var gotPriority struct {
		PID    int    `json:"pid"`
		Action string `json:"action"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/kill", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PID int `json:"pid"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.PID != 42 {
			t.Errorf("kill pid = %d, want 42", body.PID)
		}
		_, _ = w.Write([]byte(`{"message":"Process 42 terminated"}`))
	})
	mux.HandleFunc("/priority", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotPriority)
		_, _ = w.Write([]byte(`{"message":"Priority lowered"}`))
	})
	c := newTestClient(t, mux)

	msg, err := c.Kill(context.Background(), 42)
	if err != nil || msg != "Process 42 terminated" {
		t.Fatalf("Kill = %q, %v", msg, err)
	}
	msg, err = c.SetPriority(context.Background(), 7, Lower)
	if err != nil || msg != "Priority lowered" {
		t.Fatalf("SetPriority = %q, %v", msg, err)
	}
	if gotPriority.PID != 7 || gotPriority.Action != "lower" {
		t.Fatalf("priority body = %+v", gotPriority)
	}
	if _, err = c.SetPriority(context.Background(), 7, "sideways"); err == nil {
		t.Fatal("SetPriority accepted an invalid action")
	}
}

func TestServerErrorMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Access denied"}`))
	}))

	_, err := c.Kill(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "Access denied" {
		t.Fatalf("APIError = %+v", apiErr)
	}
	if got := Message(err, "Error killing process"); got != "Access denied" {
		t.Fatalf("Message = %q, want server message", got)
	}
}

func TestGenericFallback(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))

	_, err := c.AnalyzeSystem(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := Message(err, "Error analyzing system"); got != "Error analyzing system" {
		t.Fatalf("Message = %q, want fallback", got)
	}
	if got := Message(errors.New("dial tcp: refused"), "fallback"); got != "fallback" {
		t.Fatalf("Message for transport error = %q", got)
	}
}

func TestAnalyze(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze_process/99", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"analysis":"busy","anomalies":"none","recommendations":"relax"}`))
	})
	mux.HandleFunc("/analyze_system", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"analysis":"ok","system_data":{
			"top_cpu_processes":[{"name":"a","cpu_percent":12.5}],
			"top_memory_processes":[{"name":"b","memory_percent":40}]}}`))
	})
	c := newTestClient(t, mux)

	pa, err := c.AnalyzeProcess(context.Background(), 99)
	if err != nil {
		t.Fatalf("AnalyzeProcess: %v", err)
	}
	if pa.Analysis != "busy" || pa.Recommendations != "relax" {
		t.Fatalf("process analysis = %+v", pa)
	}

	sa, err := c.AnalyzeSystem(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeSystem: %v", err)
	}
	if len(sa.SystemData.TopCPU) != 1 || sa.SystemData.TopCPU[0].CPUPercent != 12.5 {
		t.Fatalf("top cpu = %+v", sa.SystemData.TopCPU)
	}
	if len(sa.SystemData.TopMemory) != 1 || sa.SystemData.TopMemory[0].MemoryPercent != 40 {
		t.Fatalf("top memory = %+v", sa.SystemData.TopMemory)
	}
}

func TestBaseURLWithPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/monitor", srv.Client(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err = c.Processes(context.Background()); err != nil {
		t.Fatalf("Processes: %v", err)
	}
	if gotPath != "/monitor/processes" {
		t.Fatalf("path = %q, want /monitor/processes", gotPath)
	}
}

func TestNewClientRejectsBadScheme(t *testing.T) {
	if _, err := NewClient("ftp://example.com", nil, nil); err == nil {
		t.Fatal("NewClient accepted ftp scheme")
	}
}
