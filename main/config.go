package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	flightmanual "github.com/igsxf22/flight-manual"
	"github.com/igsxf22/flight-manual/relay"
)

// Config is the full application configuration. Defaults are filled in
// first, so the TOML file only needs the keys it wants to change.
type Config struct {
	Relay     relay.Config
	Publisher PublisherConfig
	Recorder  RecorderConfig
}

type PublisherConfig struct {
	RateHz     float64
	InvertDown bool
	Scale      float64
	MountIndex float64
	CameraFOV  float64
}

type RecorderConfig struct {
	Enabled bool
	Path    string
}

func defaultConfig() *Config {
	return &Config{
		Relay: relay.Config{
			Host: relay.DefaultHost,
			Port: relay.DefaultPort,
		},
		Publisher: PublisherConfig{
			RateHz:     flightmanual.DefaultRateHz,
			InvertDown: flightmanual.DefaultInvertDown,
			Scale:      flightmanual.DefaultScale,
			CameraFOV:  90,
		},
		Recorder: RecorderConfig{
			Path: "flight_log.db",
		},
	}
}

// loadConfig returns the defaults when fileName is empty, otherwise the
// defaults overlaid with the TOML file. A relative fileName is resolved
// against the binary's directory.
func loadConfig(fileName string) (*Config, error) {
	config := defaultConfig()
	if fileName == "" {
		return config, nil
	}
	if !filepath.IsAbs(fileName) {
		dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
		if err != nil {
			return nil, errors.Wrap(err, "unable to determine binary location")
		}
		fileName = filepath.Join(dir, fileName)
	}
	if _, err := toml.DecodeFile(fileName, config); err != nil {
		return nil, errors.Wrapf(err, "unable to load configuration %s", fileName)
	}
	return config, nil
}
