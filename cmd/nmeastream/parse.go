package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"nmeastream/internal/gps"
	"nmeastream/internal/nmea"
)

// parseAction decodes one sentence per argument, or one per stdin line
// when no arguments are given. Lines that fail are reported on stderr and
// skipped.
func parseAction(c *cli.Context) error {
	enc := json.NewEncoder(c.App.Writer)
	p := gps.NewParser()

	var encErr error
	p.On(gps.EventData, func(s nmea.Sentence) {
		if encErr == nil {
			encErr = enc.Encode(s)
		}
	})

	n := 0
	update := func(line string) {
		n++
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		ok, err := p.Update(line)
		switch {
		case err != nil:
			fmt.Fprintf(c.App.ErrWriter, "line %d: %v\n", n, err)
		case !ok:
			fmt.Fprintf(c.App.ErrWriter, "line %d: not a supported sentence: %q\n", n, line)
		}
	}

	if c.NArg() > 0 {
		for _, arg := range c.Args().Slice() {
			update(arg)
		}
	} else {
		sc := bufio.NewScanner(c.App.Reader)
		sc.Buffer(make([]byte, 0, 4096), 1024*1024)
		for sc.Scan() {
			update(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}
	if encErr != nil {
		return encErr
	}

	if c.Bool(flagState) {
		return enc.Encode(p.State())
	}
	return nil
}
