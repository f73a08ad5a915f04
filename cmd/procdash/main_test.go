package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Dicklesworthstone/procdash/internal/backend"
	"github.com/Dicklesworthstone/procdash/internal/config"
	"github.com/Dicklesworthstone/procdash/internal/model"
)

func TestDumpProcesses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/processes" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"pid":1,"name":"init","user":"root"}]`))
	}))
	defer srv.Close()

	cfg := config.Default()
	client, err := backend.NewClient(srv.URL, srv.Client(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err = dumpProcesses(context.Background(), cfg, client, &buf); err != nil {
		t.Fatalf("dumpProcesses: %v", err)
	}
	var got []model.ProcessRecord
	if err = json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 1 || got[0].PID != 1 || got[0].Name != "init" {
		t.Fatalf("got %+v", got)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "procdash.log")
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Info("hello", "k", "v")
	closeLog()

	cfg.LogLevel = "verbose"
	if _, _, err = newLogger(cfg); err == nil {
		t.Fatalf("newLogger accepted a bad level")
	}
}
