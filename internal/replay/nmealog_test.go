package replay

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeSleeper struct {
	slept []time.Duration
}

func (fs *fakeSleeper) Sleep(d time.Duration) {
	fs.slept = append(fs.slept, d)
}

const (
	rmc = "$GPRMC,234919.000,A,4832.3914,N,00903.5500,E,2.28,2.93,260116,,*0D"
	vtg = "$GPVTG,2.93,T,,M,2.28,N,4.2,K*66"
)

func TestReaderReadAll(t *testing.T) {
	in := strings.NewReader(`
# comment

START
0, ` + rmc + `
10,` + vtg + `
`)

	recs, err := NewReader(in).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].Line != "" {
		t.Fatalf("expected START marker, got %q", recs[0].Line)
	}
	if recs[1].At != 0 || recs[1].Line != rmc {
		t.Fatalf("unexpected record 1: %+v", recs[1])
	}
	if recs[2].At != 10*time.Nanosecond || recs[2].Line != vtg {
		t.Fatalf("unexpected record 2: %+v", recs[2])
	}
}

func TestReaderReadAll_InvalidLine(t *testing.T) {
	for _, in := range []string{
		"not-a-valid-line\n",
		"abc,$GPVTG\n",
		"-5,$GPVTG\n",
		"5,GPVTG\n",
	} {
		if _, err := NewReader(strings.NewReader(in)).ReadAll(); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestPlay_RespectsTimingAndStart(t *testing.T) {
	var lines []string
	fs := &fakeSleeper{}

	recs := []Record{
		{At: 1 * time.Second},
		{At: 1 * time.Second, Line: "$A"},
		{At: 1*time.Second + 100*time.Nanosecond, Line: "$B"},
		{At: 2 * time.Second},
		{At: 2*time.Second + 50*time.Nanosecond, Line: "$C"},
	}

	err := Play(context.Background(), recs, 1.0, false, fs, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"$A", "$B", "$C"}) {
		t.Fatalf("lines = %v", lines)
	}
	if !reflect.DeepEqual(fs.slept, []time.Duration{100 * time.Nanosecond}) {
		t.Fatalf("slept = %v, want [100ns]", fs.slept)
	}
}

func TestPlay_SpeedMultiplier(t *testing.T) {
	fs := &fakeSleeper{}
	recs := []Record{
		{At: 0, Line: "$A"},
		{At: 100 * time.Nanosecond, Line: "$B"},
	}

	err := Play(context.Background(), recs, 2.0, false, fs, func(string) error { return nil })
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if !reflect.DeepEqual(fs.slept, []time.Duration{50 * time.Nanosecond}) {
		t.Fatalf("slept = %v, want [50ns]", fs.slept)
	}
}

func TestPlay_InvalidSpeed(t *testing.T) {
	recs := []Record{{At: 0, Line: "$A"}}
	if err := Play(context.Background(), recs, 0, false, nil, func(string) error { return nil }); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPlay_LoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	recs := []Record{{At: 0, Line: "$A"}}
	n := 0
	err := Play(ctx, recs, 1.0, true, &fakeSleeper{}, func(string) error {
		n++
		if n == 3 {
			cancel()
		}
		return nil
	})
	if err != context.Canceled {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if n != 3 {
		t.Fatalf("n=%d want 3", n)
	}
}

func TestWriter_WritesExpectedFormat(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "out.log")

	w, err := CreateWriter(path)
	if err != nil {
		t.Fatalf("CreateWriter() error: %v", err)
	}
	w.start = time.Unix(0, 0)

	if err := w.WriteLine(time.Unix(0, 20), vtg+"\r\n"); err != nil {
		t.Fatalf("WriteLine() error: %v", err)
	}
	if err := w.WriteLine(time.Unix(0, 20), ""); err == nil {
		t.Fatalf("expected error for empty line")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.WriteLine(time.Unix(0, 30), vtg); err == nil {
		t.Fatalf("expected error after Close")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(b) != "START\n20,"+vtg+"\n" {
		t.Fatalf("unexpected file contents: %q", string(b))
	}
}

func TestRecordReplay_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nmea-record.log")

	w, err := CreateWriter(path)
	if err != nil {
		t.Fatalf("CreateWriter() error: %v", err)
	}
	now := time.Now()
	in := []string{rmc, vtg}
	for _, l := range in {
		if err := w.WriteLine(now, l); err != nil {
			t.Fatalf("WriteLine() error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	recs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var out []string
	fs := &fakeSleeper{}
	if err := Play(context.Background(), recs, 1.0, false, fs, func(l string) error {
		out = append(out, l)
		return nil
	}); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if len(fs.slept) != 0 {
		t.Fatalf("expected no sleeps, got %v", fs.slept)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("lines mismatch\n got: %q\nwant: %q", out, in)
	}
}
