package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// GPS sources.
const (
	SourceSerial  = "serial"
	SourceGPSD    = "gpsd"
	SourceTCP     = "tcp"
	SourceFile    = "file"
	SourceCommand = "command"
)

type Config struct {
	GPS    GPSConfig    `yaml:"gps"`
	UDP    UDPConfig    `yaml:"udp"`
	Web    WebConfig    `yaml:"web"`
	Record RecordConfig `yaml:"record"`
	Log    LogConfig    `yaml:"log"`
}

type GPSConfig struct {
	// Source is one of serial, gpsd, tcp, file or command.
	Source string `yaml:"source"`

	// Device is the serial device path. Empty means auto-detect.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	// Addr is host:port for the gpsd and tcp sources.
	Addr string `yaml:"addr"`

	// PPSPin is the BCM GPIO wired to the receiver's PPS output. 0 disables it.
	PPSPin int `yaml:"pps_pin"`

	Replay ReplayConfig `yaml:"replay"`

	// Command runs a program such as gpspipe -r and reads NMEA from its stdout.
	Command CommandConfig `yaml:"command"`
}

type CommandConfig struct {
	Path    string            `yaml:"path"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Restart *bool             `yaml:"restart"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	_ = cfg.normalize()
	return cfg
}

func (cfg *Config) normalize() error {
	cfg.GPS.Source = strings.ToLower(strings.TrimSpace(cfg.GPS.Source))
	if cfg.GPS.Source == "" {
		cfg.GPS.Source = SourceSerial
	}

	switch cfg.GPS.Source {
	case SourceSerial:
		if cfg.GPS.Baud == 0 {
			cfg.GPS.Baud = 9600
		}
		if cfg.GPS.Baud < 0 {
			return fmt.Errorf("gps.baud must be > 0")
		}
	case SourceGPSD:
		if cfg.GPS.Addr == "" {
			cfg.GPS.Addr = "127.0.0.1:2947"
		}
	case SourceTCP:
		if cfg.GPS.Addr == "" {
			return fmt.Errorf("gps.addr is required when gps.source is tcp")
		}
	case SourceFile:
		if cfg.GPS.Replay.Path == "" {
			return fmt.Errorf("gps.replay.path is required when gps.source is file")
		}
		if cfg.GPS.Replay.Speed == 0 {
			cfg.GPS.Replay.Speed = 1
		}
		if cfg.GPS.Replay.Speed < 0 {
			return fmt.Errorf("gps.replay.speed must be > 0")
		}
	case SourceCommand:
		cfg.GPS.Command.Path = strings.TrimSpace(cfg.GPS.Command.Path)
		if cfg.GPS.Command.Path == "" {
			return fmt.Errorf("gps.command.path is required when gps.source is command")
		}
		if cfg.GPS.Command.Restart == nil {
			restart := true
			cfg.GPS.Command.Restart = &restart
		}
	default:
		return fmt.Errorf("gps.source must be one of serial, gpsd, tcp, file, command")
	}

	if cfg.GPS.PPSPin < 0 {
		return fmt.Errorf("gps.pps_pin must be >= 0")
	}

	if cfg.UDP.Enable && cfg.UDP.Dest == "" {
		return fmt.Errorf("udp.dest is required when udp.enable is true")
	}

	if cfg.Web.Enable && cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.Record.Enable {
		if cfg.Record.Path == "" {
			return fmt.Errorf("record.path is required when record.enable is true")
		}
		if cfg.GPS.Source == SourceFile {
			return fmt.Errorf("record cannot be used with gps.source=file")
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
