package gps

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"nmeastream/internal/nmea"
	"nmeastream/internal/pps"
	"nmeastream/internal/replay"
	"nmeastream/internal/source"
)

// Sources understood by Service.
const (
	SourceSerial  = "serial"
	SourceGPSD    = "gpsd"
	SourceTCP     = "tcp"
	SourceFile    = "file"
	SourceCommand = "command"
)

// Config controls where a Service reads NMEA from.
//
// A u-blox receiver typically appears as /dev/ttyACM* and talks 9600 baud
// by default. Device may be empty to auto-detect.
type Config struct {
	// Source is one of serial, gpsd, tcp, file or command. Empty means serial.
	Source string

	Device string
	Baud   int

	// Addr is host:port for the gpsd and tcp sources.
	Addr string

	ReplayPath  string
	ReplaySpeed float64
	ReplayLoop  bool

	// Command and its arguments for the command source. Each stdout line is
	// one sentence.
	Command        string
	Args           []string
	Env            map[string]string
	CommandRestart bool

	// PPSPin is the BCM GPIO carrying the receiver's pulse-per-second
	// output. Zero disables it.
	PPSPin int

	// Clock drives the satellite visibility window and replay timing.
	// Nil means the wall clock.
	Clock clock.Clock

	Metrics *Metrics

	// Recorder, when set, receives every sentence line before it is decoded.
	Recorder LineRecorder
}

// LineRecorder is implemented by *replay.Writer.
type LineRecorder interface {
	WriteLine(now time.Time, line string) error
}

type Snapshot struct {
	Source  string `json:"source"`
	Device  string `json:"device,omitempty"`
	Baud    int    `json:"baud,omitempty"`
	Addr    string `json:"addr,omitempty"`
	Running bool   `json:"running"`

	LastSentenceUTC string `json:"last_sentence_utc,omitempty"`
	LastError       string `json:"last_error,omitempty"`

	Link    *source.Snapshot        `json:"link,omitempty"`
	Command *source.CommandSnapshot `json:"command,omitempty"`
	PPS     *pps.Snapshot           `json:"pps,omitempty"`

	State State `json:"state"`
}

// Service owns a Parser and keeps it fed from one source. Decode errors are
// logged and counted; they never stop ingestion.
type Service struct {
	cfg     Config
	log     *logrus.Entry
	clock   clock.Clock
	metrics *Metrics
	subs    *fanout

	last atomic.Value // Snapshot

	mu           sync.Mutex
	parser       *Parser
	buf          lineBuffer
	snap         Snapshot
	recordFailed bool
	cancel       context.CancelFunc
	closer       io.Closer
	link         *source.Client
	command      *source.Command
	pps          *pps.Monitor

	wg sync.WaitGroup
}

func New(cfg Config) *Service {
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if cfg.Source == "" {
		cfg.Source = SourceSerial
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	s := &Service{
		cfg:     cfg,
		log:     logrus.WithField("component", "gps"),
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		subs:    newFanout(),
		parser:  NewParser(WithClock(cfg.Clock)),
	}
	s.parser.On(EventData, s.onSentence)

	s.snap = Snapshot{Source: cfg.Source, Device: cfg.Device, Baud: cfg.Baud, Addr: cfg.Addr}
	s.snap.State = s.parser.State()
	s.last.Store(s.snap)
	return s
}

// Start opens the configured source and begins ingesting in the background.
// Calling Start on a running Service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	var err error
	switch s.cfg.Source {
	case SourceSerial:
		err = s.startSerialLocked(ctx)
	case SourceGPSD:
		addr := s.cfg.Addr
		if addr == "" {
			addr = gpsdDefaultAddr
		}
		err = s.startLinkLocked(ctx, source.Config{Name: "gpsd", Addr: addr, Hello: gpsdWatch})
	case SourceTCP:
		err = s.startLinkLocked(ctx, source.Config{Name: "tcp", Addr: s.cfg.Addr})
	case SourceFile:
		err = s.startReplayLocked(ctx)
	case SourceCommand:
		err = s.startCommandLocked(ctx)
	default:
		err = fmt.Errorf("unknown gps source %q", s.cfg.Source)
	}
	if err != nil {
		s.setErrorLocked(err.Error())
		return err
	}
	if s.cfg.PPSPin > 0 && s.pps == nil {
		m := pps.New(s.cfg.PPSPin, s.clock)
		if err := m.Start(); err != nil {
			// Sentences still flow without PPS.
			s.log.Warnf("pps disabled: %v", err)
		} else {
			s.pps = m
		}
	}
	s.snap.Running = true
	s.publishLocked()
	return nil
}

func (s *Service) startSerialLocked(ctx context.Context) error {
	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			return fmt.Errorf("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
		}
	}
	baud := s.cfg.Baud
	if baud == 0 {
		baud = 9600
	}

	f, err := openSerial(device, baud)
	if err != nil {
		return errors.Wrapf(err, "gps open failed device=%s baud=%d", device, baud)
	}
	s.closer = f
	s.snap.Device, s.snap.Baud = device, baud

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = f.Close() }()

		s.log.Infof("gps enabled source=serial device=%s baud=%d", device, baud)
		err := s.readChunks(childCtx, f)
		if childCtx.Err() == nil {
			s.stopped(fmt.Sprintf("gps read stopped: %v", err))
		}
	}()
	return nil
}

// readChunks copies r into the parser until r fails or ctx is done.
func (s *Service) readChunks(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 512)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := r.Read(buf)
		if n > 0 {
			s.Feed(string(buf[:n]))
		}
		if err != nil {
			return err
		}
	}
}

func (s *Service) startLinkLocked(ctx context.Context, cfg source.Config) error {
	link, err := source.New(cfg)
	if err != nil {
		return err
	}
	gpsd := cfg.Name == "gpsd"

	childCtx, cancel := context.WithCancel(ctx)
	err = link.Start(childCtx, func(line string) {
		if gpsd {
			if r, ok := parseGPSDReport(line); ok {
				s.onGPSDReport(r)
				return
			}
		}
		s.Feed(line + "\n")
	})
	if err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.link = link
	s.snap.Addr = cfg.Addr
	s.log.Infof("gps enabled source=%s addr=%s", s.cfg.Source, cfg.Addr)
	return nil
}

func (s *Service) onGPSDReport(r gpsdReport) {
	switch r.Class {
	case "ERROR", "INVALID":
		s.log.Warnf("gpsd %s: %s", strings.ToLower(r.Class), r.Message)
		s.setError("gpsd: " + r.Message)
	case "VERSION":
		s.log.Debugf("gpsd release=%s", r.Release)
	case "DEVICES":
		for _, d := range r.Devices {
			s.log.Infof("gpsd device path=%s driver=%s", d.Path, d.Driver)
		}
	}
}

func (s *Service) startCommandLocked(ctx context.Context) error {
	cmd, err := source.NewCommand(source.CommandConfig{
		Name:    "command",
		Command: s.cfg.Command,
		Args:    s.cfg.Args,
		Env:     s.cfg.Env,
		Restart: s.cfg.CommandRestart,
	})
	if err != nil {
		return err
	}

	childCtx, cancel := context.WithCancel(ctx)
	if err := cmd.Start(childCtx, func(line string) { s.Feed(line + "\n") }); err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.command = cmd

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-childCtx.Done():
		case <-cmd.Done():
			if childCtx.Err() == nil {
				s.stopped(cmd.Snapshot().LastError)
			}
		}
	}()
	s.log.Infof("gps enabled source=command cmd=%s args=%q", s.cfg.Command, s.cfg.Args)
	return nil
}

func (s *Service) startReplayLocked(ctx context.Context) error {
	records, err := replay.ReadFile(s.cfg.ReplayPath)
	if err != nil {
		return err
	}
	speed := s.cfg.ReplaySpeed
	if speed == 0 {
		speed = 1
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.log.Infof("gps enabled source=file path=%s records=%d speed=%g loop=%v", s.cfg.ReplayPath, len(records), speed, s.cfg.ReplayLoop)
		err := replay.Play(childCtx, records, speed, s.cfg.ReplayLoop, s.clock, func(line string) error {
			s.Feed(line + "\n")
			return nil
		})
		switch {
		case childCtx.Err() != nil:
		case err != nil:
			s.stopped(fmt.Sprintf("replay stopped: %v", err))
		default:
			s.log.Infof("replay finished path=%s", s.cfg.ReplayPath)
			s.stopped("")
		}
	}()
	return nil
}

// Feed pushes raw receiver output through the parser. Unlike Parser.Feed it
// keeps going after a decode error.
func (s *Service) Feed(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.write(chunk)
	for {
		line, ok := s.buf.next()
		if !ok {
			break
		}
		s.updateLocked(line)
	}
	s.publishLocked()
}

func (s *Service) updateLocked(line string) {
	if s.cfg.Recorder != nil {
		if err := s.cfg.Recorder.WriteLine(s.clock.Now(), line); err != nil && !s.recordFailed {
			s.recordFailed = true
			s.log.Warnf("record failed: %v", err)
		}
	}

	ok, err := s.parser.Update(line)
	switch {
	case err != nil:
		s.metrics.decodeError(err)
		// Only log a change of error; noisy receivers repeat the same one.
		if err.Error() != s.snap.LastError {
			s.log.Warnf("decode failed: %v", err)
		}
		s.snap.LastError = err.Error()
	case !ok:
		s.metrics.decodeError(nil)
		s.log.Debugf("skipped line: %q", line)
	}
}

// onSentence runs inside Parser.Update, with s.mu held.
func (s *Service) onSentence(sent nmea.Sentence) {
	s.metrics.sentence(sent)
	s.snap.LastSentenceUTC = s.clock.Now().UTC().Format(time.RFC3339Nano)
	s.subs.publish(sent)
}

func (s *Service) publishLocked() {
	s.snap.State = s.parser.State()
	s.metrics.state(s.snap.State)
	s.last.Store(s.snap)
}

// Subscribe returns a channel receiving every decoded sentence. Sentences
// are dropped for a subscriber whose buffer is full.
func (s *Service) Subscribe(buffer int) (int, <-chan nmea.Sentence) {
	if s == nil {
		return 0, nil
	}
	return s.subs.subscribe(buffer)
}

func (s *Service) Unsubscribe(id int) {
	if s == nil {
		return
	}
	s.subs.unsubscribe(id)
}

// Close stops ingestion, waits for the reader goroutine and closes every
// subscriber channel. A Recorder with a Flush method is flushed.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	cancel, closer, link, cmd, ppsMon := s.cancel, s.closer, s.link, s.command, s.pps
	s.cancel, s.closer, s.link, s.pps = nil, nil, nil, nil
	s.mu.Unlock()

	var errs error
	if cancel != nil {
		cancel()
	}
	if closer != nil {
		if err := closer.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = multierr.Append(errs, errors.Wrap(err, "close gps source"))
		}
	}
	if link != nil {
		link.Close()
	}
	if cmd != nil {
		cmd.Close()
	}
	if ppsMon != nil {
		errs = multierr.Append(errs, errors.Wrap(ppsMon.Close(), "close pps"))
	}
	s.wg.Wait()

	if f, ok := s.cfg.Recorder.(interface{ Flush() error }); ok {
		errs = multierr.Append(errs, errors.Wrap(f.Flush(), "flush recorder"))
	}
	s.subs.closeAll()

	s.mu.Lock()
	s.snap.Running = false
	s.publishLocked()
	s.mu.Unlock()
	return errs
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	snap := v.(Snapshot)

	s.mu.Lock()
	link, cmd, ppsMon := s.link, s.command, s.pps
	s.mu.Unlock()
	if link != nil {
		ls := link.Snapshot()
		snap.Link = &ls
	}
	if cmd != nil {
		cs := cmd.Snapshot()
		snap.Command = &cs
	}
	if ppsMon != nil {
		ps := ppsMon.Snapshot()
		snap.PPS = &ps
	}
	return snap
}

// stopped records that the reader goroutine ended on its own.
func (s *Service) stopped(msg string) {
	if msg != "" {
		s.log.Warn(msg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg != "" {
		s.snap.LastError = msg
	}
	s.snap.Running = false
	s.publishLocked()
}

func (s *Service) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *Service) setErrorLocked(msg string) {
	s.snap.LastError = msg
	s.last.Store(s.snap)
}

func autoDetectDevice() string {
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
