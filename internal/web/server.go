package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"nmeastream/internal/gps"
	"nmeastream/internal/nmea"
)

// GPS is the view of a running receiver the web UI needs. *gps.Service
// implements it.
type GPS interface {
	Snapshot() gps.Snapshot
	Subscribe(buffer int) (int, <-chan nmea.Sentence)
	Unsubscribe(id int)
}

type Options struct {
	GPS    GPS
	Status *Status
	Logs   *LogBuffer

	// Metrics serves /metrics when set, typically promhttp.HandlerFor.
	Metrics http.Handler
}

func Handler(opts Options) http.Handler {
	status := opts.Status
	if status == nil {
		status = NewStatus()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		writeJSON(w, status.Snapshot(time.Now().UTC()))
	})

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		if opts.GPS == nil {
			http.Error(w, "gps unavailable", http.StatusNotFound)
			return
		}
		writeJSON(w, opts.GPS.Snapshot())
	})

	if opts.GPS != nil {
		mux.Handle("/ws", streamHandler(opts.GPS))
	}
	if opts.Logs != nil {
		mux.Handle("/api/logs", opts.Logs.Handler())
	}
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics)
	}
	mux.Handle("/api/about", AboutHandler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		snap := status.Snapshot(time.Now().UTC())
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>nmeastream</title></head><body>")
		_, _ = fmt.Fprintf(w, "<h1>nmeastream</h1>")
		_, _ = fmt.Fprintf(w, "<p><a href=\"/api/state\">/api/state</a> <a href=\"/api/status\">/api/status</a> <a href=\"/api/logs?format=text\">/api/logs</a></p>")
		_, _ = fmt.Fprintf(w, "<pre>source=%s\nudp_dest=%s\nforwarded_total=%d\nlast_forward_utc=%s</pre>",
			html.EscapeString(snap.Source), html.EscapeString(snap.UDPDest), snap.ForwardedTotal, snap.LastForwardUTC,
		)
		_, _ = fmt.Fprintf(w, "</body></html>")
	})

	return mux
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func Serve(ctx context.Context, listenAddr string, opts Options) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Handler(opts),
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: /ws connections are long-lived and set their own
		// per-message deadlines.
		IdleTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
