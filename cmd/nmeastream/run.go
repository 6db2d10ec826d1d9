package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"nmeastream/internal/config"
	"nmeastream/internal/gps"
	"nmeastream/internal/nmea"
	"nmeastream/internal/replay"
	"nmeastream/internal/udp"
	"nmeastream/internal/web"
)

func runAction(c *cli.Context) error {
	cfg := config.Default()
	if path := c.Path(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return errors.Wrap(err, "config load failed")
		}
		cfg = loaded
	}

	logs := web.NewLogBuffer(2000)
	if err := configureLogging(logrus.StandardLogger(), cfg.Log, logs); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return run(ctx, cfg, logs)
}

func configureLogging(l *logrus.Logger, cfg config.LogConfig, logs *web.LogBuffer) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	l.SetLevel(level)
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if logs != nil {
		l.AddHook(logs)
	}
	return nil
}

// gpsConfig maps the file configuration onto the service's.
func gpsConfig(cfg config.GPSConfig) gps.Config {
	out := gps.Config{
		Source:      cfg.Source,
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		Addr:        cfg.Addr,
		PPSPin:      cfg.PPSPin,
		ReplayPath:  cfg.Replay.Path,
		ReplaySpeed: cfg.Replay.Speed,
		ReplayLoop:  cfg.Replay.Loop,
		Command:     cfg.Command.Path,
		Args:        cfg.Command.Args,
		Env:         cfg.Command.Env,
	}
	if cfg.Command.Restart != nil {
		out.CommandRestart = *cfg.Command.Restart
	}
	return out
}

// run starts every configured component and blocks until ctx is done.
func run(ctx context.Context, cfg config.Config, logs *web.LogBuffer) (err error) {
	log := logrus.WithField("component", "main")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := gps.NewMetrics(reg)
	if err != nil {
		return err
	}

	status := web.NewStatus()
	status.SetStatic(cfg.GPS.Source, cfg.UDP.Dest, cfg.Record.Path)

	gcfg := gpsConfig(cfg.GPS)
	gcfg.Metrics = metrics

	var recorder *replay.Writer
	if cfg.Record.Enable {
		recorder, err = replay.CreateWriter(cfg.Record.Path)
		if err != nil {
			return errors.Wrap(err, "create record log")
		}
		defer func() { err = multierr.Append(err, errors.Wrap(recorder.Close(), "close record log")) }()
		gcfg.Recorder = recorder
		log.Infof("recording path=%s", cfg.Record.Path)
	}

	svc := gps.New(gcfg)
	var wg sync.WaitGroup

	if cfg.UDP.Enable {
		bc, bcErr := udp.NewBroadcaster(cfg.UDP.Dest)
		if bcErr != nil {
			return errors.Wrap(bcErr, "udp broadcaster init failed")
		}
		defer func() { err = multierr.Append(err, errors.Wrap(bc.Close(), "close udp")) }()
		log.Infof("udp dest=%s", bc.Dest())

		id, ch := svc.Subscribe(256)
		defer svc.Unsubscribe(id)
		wg.Add(1)
		go func() {
			defer wg.Done()
			forward(ch, bc, status)
		}()
	}

	if startErr := svc.Start(ctx); startErr != nil {
		_ = svc.Close()
		wg.Wait()
		return errors.Wrap(startErr, "gps start failed")
	}

	webErr := make(chan error, 1)
	if cfg.Web.Enable {
		opts := web.Options{
			GPS:     svc,
			Status:  status,
			Logs:    logs,
			Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		log.Infof("web listen=%s", cfg.Web.Listen)
		go func() { webErr <- web.Serve(ctx, cfg.Web.Listen, opts) }()
	}

	log.Infof("nmeastream started source=%s", cfg.GPS.Source)
	select {
	case <-ctx.Done():
	case werr := <-webErr:
		if werr != nil {
			err = multierr.Append(err, errors.Wrap(werr, "web server stopped"))
		}
	}
	log.Info("nmeastream stopping")

	// Closing the service closes subscriber channels, which ends forward.
	err = multierr.Append(err, svc.Close())
	wg.Wait()
	return err
}

type jsonSender interface {
	SendJSON(v any) error
}

// forward sends every sentence from ch as one JSON datagram until ch is
// closed. Send failures are logged once per distinct error.
func forward(ch <-chan nmea.Sentence, dst jsonSender, status *web.Status) {
	log := logrus.WithField("component", "udp")
	var lastErr string
	for s := range ch {
		if err := dst.SendJSON(s); err != nil {
			if err.Error() != lastErr {
				log.Warnf("send failed: %v", err)
				lastErr = err.Error()
			}
			continue
		}
		lastErr = ""
		status.MarkForwarded(time.Now().UTC(), 1)
	}
}
