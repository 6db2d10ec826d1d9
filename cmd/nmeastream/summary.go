package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"nmeastream/internal/nmea"
	"nmeastream/internal/replay"
)

type logSummary struct {
	Segments    int
	Sentences   int
	Invalid     int
	BadChecksum int
	MaxDuration time.Duration
	TypeCounts  map[string]int
}

func summarizeLog(records []replay.Record) logSummary {
	s := logSummary{TypeCounts: map[string]int{}}
	if len(records) == 0 {
		return s
	}

	origin := time.Duration(0)
	hasSentences := false
	segments := 0

	for _, r := range records {
		if r.Line == "" {
			segments++
			origin = r.At
			continue
		}
		hasSentences = true

		s.Sentences++
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}

		// Framing only; the log may hold types without a decoder.
		f, err := nmea.ParseFrame(r.Line)
		if err != nil {
			s.Invalid++
			continue
		}
		if !f.Valid {
			s.BadChecksum++
		}
		s.TypeCounts[f.Talker+f.Type]++
	}
	if segments == 0 && hasSentences {
		segments = 1
	}
	s.Segments = segments
	return s
}

func summaryAction(c *cli.Context) error {
	path := strings.TrimSpace(c.Args().First())
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	recs, err := replay.ReadFile(path)
	if err != nil {
		return err
	}
	printLogSummary(c.App.Writer, path, summarizeLog(recs))
	return nil
}

func printLogSummary(w io.Writer, path string, s logSummary) {
	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "sentences: %d\n", s.Sentences)
	fmt.Fprintf(w, "invalid_sentences: %d\n", s.Invalid)
	fmt.Fprintf(w, "bad_checksums: %d\n", s.BadChecksum)
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)

	keys := make([]string, 0, len(s.TypeCounts))
	for k := range s.TypeCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "type_counts:\n")
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, s.TypeCounts[k])
	}
}
