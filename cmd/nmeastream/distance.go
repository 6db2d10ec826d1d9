package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"nmeastream/internal/geodesy"
)

type pathLeg struct {
	From       geodesy.Point `json:"from"`
	To         geodesy.Point `json:"to"`
	DistanceKm float64       `json:"distance_km"`
	HeadingDeg float64       `json:"heading_deg"`
}

type pathReport struct {
	Legs    []pathLeg `json:"legs"`
	TotalKm float64   `json:"total_km"`
}

func distanceAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("need at least two lat,lon points")
	}
	path := make([]geodesy.Point, 0, c.NArg())
	for _, arg := range c.Args().Slice() {
		p, err := parsePoint(arg)
		if err != nil {
			return err
		}
		path = append(path, p)
	}

	report := measurePath(path)
	if c.Bool(flagJSON) {
		return json.NewEncoder(c.App.Writer).Encode(report)
	}
	for _, l := range report.Legs {
		fmt.Fprintf(c.App.Writer, "%.6f,%.6f -> %.6f,%.6f  %.3f km  %.1f deg\n",
			l.From.Lat, l.From.Lon, l.To.Lat, l.To.Lon, l.DistanceKm, l.HeadingDeg)
	}
	fmt.Fprintf(c.App.Writer, "total: %.3f km\n", report.TotalKm)
	return nil
}

func measurePath(path []geodesy.Point) pathReport {
	r := pathReport{Legs: make([]pathLeg, 0, len(path)), TotalKm: geodesy.TotalDistance(path)}
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		r.Legs = append(r.Legs, pathLeg{
			From:       a,
			To:         b,
			DistanceKm: geodesy.Distance(a.Lat, a.Lon, b.Lat, b.Lon),
			HeadingDeg: geodesy.Heading(a.Lat, a.Lon, b.Lat, b.Lon),
		})
	}
	return r
}

func parsePoint(s string) (geodesy.Point, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return geodesy.Point{}, fmt.Errorf("point %q: want lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return geodesy.Point{}, fmt.Errorf("point %q: bad latitude", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return geodesy.Point{}, fmt.Errorf("point %q: bad longitude", s)
	}
	return geodesy.Point{Lat: lat, Lon: lon}, nil
}
