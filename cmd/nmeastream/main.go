package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	flagConfig = "config"
	flagState  = "state"
	flagJSON   = "json"
)

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "nmeastream",
		Usage:     "decode NMEA-0183 receiver output",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "read a receiver and serve its state",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "path to YAML config; defaults apply when omitted",
					},
				},
				Action: runAction,
			},
			{
				Name:      "parse",
				Usage:     "decode sentences from arguments or stdin and print them as JSON",
				ArgsUsage: "[sentence...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagState,
						Usage: "print the aggregate state after the last sentence",
					},
				},
				Action: parseAction,
			},
			{
				Name:      "distance",
				Usage:     "haversine length and leg headings of a path",
				ArgsUsage: "<lat,lon> <lat,lon> [lat,lon...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "print JSON instead of text",
					},
				},
				Action: distanceAction,
			},
			{
				Name:      "summary",
				Usage:     "summarize a capture log written by run",
				ArgsUsage: "<path>",
				Action:    summaryAction,
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
