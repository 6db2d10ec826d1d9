package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config describes a TCP endpoint that streams newline-delimited NMEA text.
type Config struct {
	Name string
	Addr string

	// Hello is written after every successful connect. gpsd needs a WATCH
	// command before it starts streaming.
	Hello []byte

	BackoffInitial time.Duration
	BackoffMax     time.Duration

	MaxLineBytes int

	// DialTimeout bounds each TCP connect attempt.
	DialTimeout time.Duration
}

// Client keeps a TCP connection open, reconnecting with exponential backoff,
// and hands every non-empty line to a callback.
type Client struct {
	cfg Config
	log *logrus.Entry

	started atomic.Bool
	closed  atomic.Bool

	mu       sync.RWMutex
	state    string
	lastErr  string
	lastSeen time.Time
	lines    uint64
	connects uint64
	dialErr  string

	cancel context.CancelFunc
	done   chan struct{}
}

type Snapshot struct {
	Name        string `json:"name"`
	Addr        string `json:"addr"`
	State       string `json:"state"`
	LastError   string `json:"last_error,omitempty"`
	LastSeenUTC string `json:"last_seen_utc,omitempty"`
	Lines       uint64 `json:"lines"`
	Connects    uint64 `json:"connects"`
}

func New(cfg Config) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("source name is required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("source addr is required")
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 250 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 10 * time.Second
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		cfg.BackoffMax = cfg.BackoffInitial
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = 4096
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}

	return &Client{
		cfg:   cfg,
		log:   logrus.WithFields(logrus.Fields{"component": "source", "name": cfg.Name}),
		state: "stopped",
		done:  make(chan struct{}),
	}, nil
}

// Start runs the connect/read loop in a goroutine until ctx is cancelled or
// Close is called. onLine receives each line with surrounding whitespace
// removed; it runs on the reader goroutine and should not block.
func (c *Client) Start(ctx context.Context, onLine func(line string)) error {
	if c == nil {
		return fmt.Errorf("source client is nil")
	}
	if c.closed.Load() {
		return fmt.Errorf("source client is closed")
	}
	if onLine == nil {
		return fmt.Errorf("source onLine is nil")
	}
	if c.started.Swap(true) {
		return fmt.Errorf("source client already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setState("connecting", "")

	go func() {
		defer close(c.done)
		c.runLoop(runCtx, onLine)
	}()
	return nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.closed.Swap(true) {
		return
	}
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

func (c *Client) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := Snapshot{
		Name:      c.cfg.Name,
		Addr:      c.cfg.Addr,
		State:     c.state,
		LastError: c.lastErr,
		Lines:     c.lines,
		Connects:  c.connects,
	}
	if !c.lastSeen.IsZero() {
		out.LastSeenUTC = c.lastSeen.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (c *Client) runLoop(ctx context.Context, onLine func(line string)) {
	dialer := &net.Dialer{Timeout: c.cfg.DialTimeout}
	backoff := c.cfg.BackoffInitial

	for {
		if ctx.Err() != nil {
			c.setState("stopped", "")
			return
		}

		c.setState("connecting", "")
		conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
		if err != nil {
			if ctx.Err() != nil {
				c.setState("stopped", "")
				return
			}
			c.setState("error", err.Error())
			if !sleepCtx(ctx, backoff) {
				c.setState("stopped", "")
				return
			}
			backoff *= 2
			if backoff > c.cfg.BackoffMax {
				backoff = c.cfg.BackoffMax
			}
			continue
		}

		backoff = c.cfg.BackoffInitial
		c.mu.Lock()
		c.connects++
		c.mu.Unlock()
		c.setState("connected", "")
		c.log.Infof("connected addr=%s", c.cfg.Addr)

		err = c.readConn(ctx, conn, onLine)
		if ctx.Err() != nil {
			c.setState("stopped", "")
			return
		}
		if err != nil {
			c.setState("disconnected", err.Error())
			c.log.Warnf("disconnected addr=%s: %v", c.cfg.Addr, err)
		} else {
			c.setState("disconnected", "")
		}

		if !sleepCtx(ctx, c.cfg.BackoffInitial) {
			c.setState("stopped", "")
			return
		}
	}
}

func (c *Client) readConn(ctx context.Context, conn net.Conn, onLine func(line string)) error {
	// Unblock the reader when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() { _ = conn.Close() }()

	if len(c.cfg.Hello) > 0 {
		if _, err := conn.Write(c.cfg.Hello); err != nil {
			return fmt.Errorf("write hello: %w", err)
		}
	}

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > c.cfg.MaxLineBytes {
			c.setState("connected", fmt.Sprintf("line too large (%d bytes)", len(line)))
			line = nil
		}
		if line = bytes.TrimSpace(line); len(line) > 0 {
			onLine(string(line))

			now := time.Now().UTC()
			c.mu.Lock()
			c.lastSeen = now
			c.lines++
			c.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func (c *Client) setState(state string, lastErr string) {
	c.mu.Lock()
	c.state = state
	if lastErr != "" {
		c.lastErr = lastErr
	} else if state == "connected" || state == "connecting" || state == "stopped" {
		c.lastErr = ""
	}
	// Repeated identical dial failures are logged once.
	logDial := false
	switch state {
	case "error":
		logDial = lastErr != c.dialErr
		c.dialErr = lastErr
	case "connected":
		c.dialErr = ""
	}
	c.mu.Unlock()

	if logDial {
		c.log.Warnf("dial failed addr=%s: %s", c.cfg.Addr, lastErr)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
