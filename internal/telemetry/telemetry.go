/*
 * Copyright (c) 2026 Yardview Authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry is the viewer's opt-in usage reporting: anonymous session
// events, running selection counts, and optional crash uploads. The opt-in
// decision comes from the user config; endpoints come from the environment.
// Without an endpoint every call is a no-op, and nothing here ever blocks the
// frame loop.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"yardview/internal/config"
	applog "yardview/internal/log"
	"yardview/internal/version"
)

// Config holds runtime configuration for usage events and crash uploads.
//
// Endpoint environment variables (read by FromEnv):
//   - YV_TELEMETRY_URL: base URL to POST JSON events to
//   - YV_CRASH_UPLOAD_URL: URL to POST crash reports to
//   - YV_TELEMETRY_TIMEOUT_MS: request timeout, default 1500ms
//   - YV_TELEMETRY_DEBUG: if set, logs send attempts
//
// The opt-in flag normally comes from the user config (FromApp); FromEnv
// falls back to YV_TELEMETRY_OPT_IN for endpoints run without a config file.
type Config struct {
	OptIn   bool
	Events  string
	Crash   string
	Timeout time.Duration
	Debug   bool
}

// FromEnv builds a Config purely from environment variables.
func FromEnv() Config {
	c := Config{
		OptIn:   parseBool(os.Getenv("YV_TELEMETRY_OPT_IN")),
		Events:  strings.TrimSpace(os.Getenv("YV_TELEMETRY_URL")),
		Crash:   strings.TrimSpace(os.Getenv("YV_CRASH_UPLOAD_URL")),
		Timeout: 1500 * time.Millisecond,
		Debug:   os.Getenv("YV_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("YV_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			c.Timeout = v
		}
	}
	return c
}

// FromApp builds a Config for a running viewer: the opt-in decision is the
// user's config setting (env overrides were already folded in by config.Load),
// endpoints and tuning still come from the environment.
func FromApp(g config.GeneralConfig) Config {
	c := FromEnv()
	c.OptIn = g.TelemetryOptIn
	return c
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// event is one queued usage event. Props are attached at enqueue time; the
// envelope (timestamp, version, platform) is stamped at send time.
type event struct {
	name  string
	props map[string]any
}

// Client accumulates selection counts and ships events asynchronously.
// Failed sends are dropped silently; the queue is bounded.
type Client struct {
	conf   Config
	log    *slog.Logger
	http   *http.Client
	queue  chan event
	once   sync.Once
	closed chan struct{}

	mu     sync.Mutex
	counts map[string]int
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault lazily initializes the package-level client from env.
func InitDefault() {
	defaultOnce.Do(func() { NewDefault(FromEnv()) })
}

// NewDefault installs a new package-level client with conf.
func NewDefault(conf Config) { defaultClient = New(conf) }

// New constructs a client and starts its sender goroutine.
func New(conf Config) *Client {
	c := &Client{
		conf:   conf,
		log:    applog.WithComponent("telemetry"),
		http:   &http.Client{Timeout: conf.Timeout},
		queue:  make(chan event, 64),
		closed: make(chan struct{}),
		counts: map[string]int{},
	}
	go c.run()
	return c
}

// Enabled reports whether usage events are on and an endpoint is set.
func (c *Client) Enabled() bool { return c != nil && c.conf.OptIn && c.conf.Events != "" }

// Enabled reports the default client's state.
func Enabled() bool {
	InitDefault()
	return defaultClient.Enabled()
}

// Event queues a JSON usage event if enabled. Props must stay non-PII:
// counts, durations, kinds. Container and block ids never leave the process.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	select {
	case c.queue <- event{name: name, props: props}:
	default:
		// queue full, drop
	}
}

// Event using the default client.
func Event(name string, props map[string]any) { InitDefault(); defaultClient.Event(name, props) }

// Selection records one selection of the given kind ("container", "block",
// "panel", ...) and emits a selection event carrying the running count for
// that kind. Counting happens even when sending is disabled, so a later
// session-end summary stays accurate.
func (c *Client) Selection(kind string) {
	if c == nil || kind == "" {
		return
	}
	c.mu.Lock()
	c.counts[kind]++
	n := c.counts[kind]
	c.mu.Unlock()
	c.Event("selection", map[string]any{"kind": kind, "count": n})
}

// Selection using the default client.
func Selection(kind string) { InitDefault(); defaultClient.Selection(kind) }

// Counts returns the per-kind selection totals, keyed "selections_<kind>",
// suitable as session-end event props.
func (c *Client) Counts() map[string]any {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	kinds := make([]string, 0, len(c.counts))
	for k := range c.counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	out := make(map[string]any, len(kinds))
	for _, k := range kinds {
		out["selections_"+k] = c.counts[k]
	}
	c.mu.Unlock()
	return out
}

// Counts using the default client.
func Counts() map[string]any { InitDefault(); return defaultClient.Counts() }

// Flush waits briefly for the queue to drain.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		if len(c.queue) == 0 || time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the sender goroutine.
func (c *Client) Close() { c.once.Do(func() { close(c.closed) }) }

func (c *Client) run() {
	for {
		select {
		case <-c.closed:
			return
		case ev := <-c.queue:
			c.send(ev)
		}
	}
}

func (c *Client) send(ev event) {
	payload := map[string]any{
		"name":    ev.name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range ev.props {
		payload[k] = v
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, c.conf.Events, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if c.conf.Debug {
			c.log.Debug("event send failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.conf.Debug {
		c.log.Debug("event sent", slog.String("name", ev.name))
	}
}

// UploadCrash posts an already-serialized crash report to the configured
// crash URL if opted in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.conf.OptIn || c.conf.Crash == "" {
		return
	}
	go func(b []byte) {
		req, err := http.NewRequest(http.MethodPost, c.conf.Crash, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.http.Do(req)
		if err != nil {
			if c.conf.Debug {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
		if c.conf.Debug {
			c.log.Debug("crash report uploaded")
		}
	}(append([]byte(nil), report...))
}

// UploadCrash using the default client.
func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }
