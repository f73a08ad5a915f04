package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

// Client is the HTTP implementation of Backend. Every path resolves
// against BaseURL.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

// NewClient parses baseURL once; hc and log may be nil.
func NewClient(baseURL string, hc *http.Client, log *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{base: u, http: hc, log: log}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) Processes(ctx context.Context) ([]model.ProcessRecord, error) {
	var out []model.ProcessRecord
	if err := c.do(ctx, "fetch processes", http.MethodGet, "/processes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Kill(ctx context.Context, pid int) (string, error) {
	req := struct {
		PID int `json:"pid"`
	}{pid}
	var resp messageResponse
	if err := c.do(ctx, "kill process", http.MethodPost, "/kill", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) SetPriority(ctx context.Context, pid int, action PriorityAction) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("invalid priority action %q", action)
	}
	req := struct {
		PID    int            `json:"pid"`
		Action PriorityAction `json:"action"`
	}{pid, action}
	var resp messageResponse
	if err := c.do(ctx, "change priority", http.MethodPost, "/priority", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) AnalyzeProcess(ctx context.Context, pid int) (*model.ProcessAnalysis, error) {
	out := new(model.ProcessAnalysis)
	path := "/analyze_process/" + strconv.Itoa(pid)
	if err := c.do(ctx, "analyze process", http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AnalyzeSystem(ctx context.Context) (*model.SystemAnalysis, error) {
	out := new(model.SystemAnalysis)
	if err := c.do(ctx, "analyze system", http.MethodGet, "/analyze_system", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op, Err: err}
		}
		rd = bytes.NewReader(data)
	}

	u := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "op", op, "url", u.String(), "error", err)
		return &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &APIError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		_ = json.Unmarshal(raw, &er)
		msg := er.Error
		if msg == "" {
			msg = er.Message
		}
		c.log.Warn("request rejected", "op", op, "status", resp.StatusCode, "message", msg)
		return &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return &APIError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
