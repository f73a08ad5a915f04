// Package live subscribes to the backend's push channel of system metric
// samples.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Dicklesworthstone/procdash/internal/model"
)

// EventSystemStats is the push event carrying a MetricSample.
const EventSystemStats = "system_stats"

// Envelope is one push message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Config describes the push subscription.
type Config struct {
	URL         string        // ws:// or wss:// endpoint
	Header      http.Header   // extra handshake headers
	DialTimeout time.Duration // per connection attempt
	Reconnect   rate.Limit    // attempts per second after a drop
	Logger      *slog.Logger
}

// Channel is a single persistent subscription that reconnects after drops
// until its context ends.
type Channel struct {
	cfg     Config
	dialer  *websocket.Dialer
	limiter *rate.Limiter
	log     *slog.Logger
}

func New(cfg Config) *Channel {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.Reconnect <= 0 {
		cfg.Reconnect = rate.Every(2 * time.Second)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Channel{
		cfg:     cfg,
		dialer:  &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout, Proxy: http.ProxyFromEnvironment},
		limiter: rate.NewLimiter(cfg.Reconnect, 1),
		log:     cfg.Logger,
	}
}

// Stream returns a channel of samples that is closed once ctx is done.
func (c *Channel) Stream(ctx context.Context) <-chan model.MetricSample {
	ch := make(chan model.MetricSample)
	go func() {
		defer close(ch)
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
			err := c.session(ctx, ch)
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("push channel dropped, reconnecting", "url", c.cfg.URL, "error", err)
		}
	}()
	return ch
}

// session runs one connection until it fails or ctx ends.
func (c *Channel) session(ctx context.Context, out chan<- model.MetricSample) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	conn, resp, err := c.dialer.DialContext(dialCtx, c.cfg.URL, c.cfg.Header)
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	defer conn.Close()
	c.log.Info("push channel connected", "url", c.cfg.URL)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		env := new(Envelope)
		if err = conn.ReadJSON(env); err != nil {
			return err
		}
		if env.Event != EventSystemStats {
			continue
		}
		sample, err := DecodeSample(env.Data, time.Now())
		if err != nil {
			c.log.Debug("discarding malformed sample", "error", err)
			continue
		}
		if terr := sample.TimeError(); terr != nil {
			c.log.Debug("sample time unreadable, using receive time", "error", terr)
		}
		select {
		case out <- sample:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// DecodeSample parses a system_stats payload, stamping now when the sample
// carries no time.
func DecodeSample(data json.RawMessage, now time.Time) (model.MetricSample, error) {
	var s model.MetricSample
	if len(data) == 0 {
		return s, errors.New("empty sample")
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	if s.Time.IsZero() {
		s.Time = now
	}
	return s, nil
}

// URLFor derives the websocket endpoint from an http(s) base URL and path.
func URLFor(baseURL, path string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.JoinPath(path).String(), nil
}
