// Package backend talks to the monitoring service that owns the process
// list, process control and analysis.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// PriorityAction is the direction of a priority change.
type PriorityAction string

const (
	Raise PriorityAction = "raise"
	Lower PriorityAction = "lower"
)

func (a PriorityAction) Valid() bool { return a == Raise || a == Lower }

// Backend is everything the dashboard asks of the monitoring service.
type Backend interface {
	Processes(ctx context.Context) ([]model.ProcessRecord, error)
	Kill(ctx context.Context, pid int) (string, error)
	SetPriority(ctx context.Context, pid int, action PriorityAction) (string, error)
	AnalyzeProcess(ctx context.Context, pid int) (*model.ProcessAnalysis, error)
	AnalyzeSystem(ctx context.Context) (*model.SystemAnalysis, error)
}

// SystemInfoer is implemented by backends that can describe their host.
type SystemInfoer interface {
	SystemInfo(ctx context.Context) (*model.SystemInfo, error)
}

// APIError is a failed request. Message is the server's error text when it
// sent one.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, http.StatusText(e.Status))
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the server-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
