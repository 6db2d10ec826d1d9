package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// CommandConfig describes a program whose stdout is an NMEA stream, such
// as `gpspipe -r` or a vendor receiver tool.
type CommandConfig struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string

	// Restart runs the program again after it exits.
	Restart bool

	BackoffInitial time.Duration
	BackoffMax     time.Duration

	StderrTailLines int
	MaxLineBytes    int
}

// Command runs a program and hands every non-empty stdout line to a
// callback. Stderr is kept in a short tail for status output.
type Command struct {
	cfg CommandConfig
	log *logrus.Entry

	started atomic.Bool
	closed  atomic.Bool

	mu       sync.RWMutex
	pid      int
	state    string
	lastErr  string
	runs     int
	lines    uint64
	stderr   *tailBuffer
	cancel   context.CancelFunc
	done     chan struct{}
	lastSeen time.Time
}

type CommandSnapshot struct {
	Name        string   `json:"name"`
	Running     bool     `json:"running"`
	PID         int      `json:"pid,omitempty"`
	State       string   `json:"state"`
	LastError   string   `json:"last_error,omitempty"`
	Runs        int      `json:"runs"`
	Lines       uint64   `json:"lines"`
	LastSeenUTC string   `json:"last_seen_utc,omitempty"`
	Stderr      []string `json:"stderr_tail,omitempty"`
}

func NewCommand(cfg CommandConfig) (*Command, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Command = strings.TrimSpace(cfg.Command)
	if cfg.Name == "" {
		return nil, fmt.Errorf("command source name is required")
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("command source command is required")
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 250 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 10 * time.Second
	}
	if cfg.StderrTailLines <= 0 {
		cfg.StderrTailLines = 50
	}
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = 4096
	}

	return &Command{
		cfg:    cfg,
		log:    logrus.WithFields(logrus.Fields{"component": "source", "name": cfg.Name}),
		state:  "stopped",
		stderr: newTailBuffer(cfg.StderrTailLines, cfg.MaxLineBytes),
		done:   make(chan struct{}),
	}, nil
}

func (c *Command) Start(ctx context.Context, onLine func(line string)) error {
	if c == nil {
		return fmt.Errorf("command source is nil")
	}
	if c.closed.Load() {
		return fmt.Errorf("command source is closed")
	}
	if onLine == nil {
		return fmt.Errorf("command onLine is nil")
	}
	if c.started.Swap(true) {
		return fmt.Errorf("command source already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.setState("starting", "")
	go c.runLoop(runCtx, onLine)
	return nil
}

func (c *Command) Close() {
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

// Done is closed once the program has exited for good.
func (c *Command) Done() <-chan struct{} { return c.done }

func (c *Command) Snapshot() CommandSnapshot {
	if c == nil {
		return CommandSnapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := CommandSnapshot{
		Name:      c.cfg.Name,
		Running:   c.pid != 0 && c.state == "running",
		PID:       c.pid,
		State:     c.state,
		LastError: c.lastErr,
		Runs:      c.runs,
		Lines:     c.lines,
		Stderr:    c.stderr.snapshot(),
	}
	if !c.lastSeen.IsZero() {
		out.LastSeenUTC = c.lastSeen.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (c *Command) runLoop(ctx context.Context, onLine func(line string)) {
	defer close(c.done)

	backoff := c.cfg.BackoffInitial
	for {
		exitErr := c.runOnce(ctx, onLine)
		if ctx.Err() != nil {
			c.setState("stopped", "")
			return
		}

		if exitErr != nil {
			c.setState("exited", exitErr.Error())
			c.log.Warnf("command exited: %v", exitErr)
		} else {
			c.setState("exited", "")
			c.log.Infof("command exited")
		}
		if !c.cfg.Restart {
			return
		}

		if !sleepCtx(ctx, backoff) {
			c.setState("stopped", "")
			return
		}
		backoff *= 2
		if backoff > c.cfg.BackoffMax {
			backoff = c.cfg.BackoffMax
		}
		c.setState("restarting", "")
	}
}

func (c *Command) runOnce(ctx context.Context, onLine func(line string)) error {
	cmd := exec.CommandContext(ctx, c.cfg.Command, c.cfg.Args...)
	if len(c.cfg.Env) > 0 {
		cmd.Env = append(cmd.Environ(), envMapToList(c.cfg.Env)...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	c.mu.Lock()
	c.pid = cmd.Process.Pid
	c.state = "running"
	c.lastErr = ""
	c.runs++
	c.mu.Unlock()
	c.log.Infof("command started pid=%d cmd=%s", cmd.Process.Pid, c.cfg.Command)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.readStdout(stdout, onLine)
	}()
	go func() {
		defer wg.Done()
		if err := readLines(stderr, c.cfg.MaxLineBytes, c.stderr.add); err != nil {
			c.stderr.add("[read error] " + err.Error())
		}
	}()

	// Pipes must be drained before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	c.mu.Lock()
	c.pid = 0
	c.mu.Unlock()

	if ctx.Err() != nil {
		return nil
	}
	return waitErr
}

func (c *Command) readStdout(r io.Reader, onLine func(line string)) {
	err := readLines(r, c.cfg.MaxLineBytes, func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		onLine(line)

		now := time.Now().UTC()
		c.mu.Lock()
		c.lines++
		c.lastSeen = now
		c.mu.Unlock()
	})
	if err != nil {
		c.log.Warnf("stdout read failed: %v", err)
		// Keep the pipe drained so the program does not block on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}
}

func (c *Command) setState(state string, lastErr string) {
	c.mu.Lock()
	c.state = state
	if strings.TrimSpace(lastErr) != "" {
		c.lastErr = lastErr
	}
	c.mu.Unlock()
}

func envMapToList(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, k+"="+v)
	}
	return out
}

func readLines(r io.Reader, maxLineBytes int, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	return scanner.Err()
}
