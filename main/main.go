package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	flightmanual "github.com/igsxf22/flight-manual"
	"github.com/igsxf22/flight-manual/recorder"
	"github.com/igsxf22/flight-manual/relay"
)

var (
	configPath     = flag.String("config", "", "path to TOML configuration")
	testMode       = flag.Bool("testmode", false, "fly a simulated vehicle")
	printTelemetry = flag.Bool("print-telemetry", false, "print published snapshots to stdout")
	simWarmup      = flag.Duration("sim-warmup", 2*time.Second, "simulated origin-lock delay in testmode")
)

// replaced when a flight-controller driver is linked in
var connectVehicle = func() (flightmanual.Vehicle, error) {
	return nil, errors.New("no flight controller driver linked; run with -testmode")
}

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}

	var vehicle flightmanual.Vehicle
	if *testMode {
		vehicle = flightmanual.NewSimVehicle(*simWarmup)
	} else {
		if vehicle, err = connectVehicle(); err != nil {
			log.Fatal("unable to connect to vehicle: ", err)
		}
	}
	defer func() {
		if err := vehicle.Close(); err != nil {
			log.WithError(err).Warn("unable to close vehicle connection")
		}
	}()

	rly, err := relay.Open(&cfg.Relay)
	if err != nil {
		log.Fatal("unable to open relay: ", err)
	}
	defer func() {
		if err := rly.Close(); err != nil {
			log.WithError(err).Warn("unable to close relay")
		}
	}()

	bridge := flightmanual.NewBridge(vehicle, rly)
	bridge.RateHz = cfg.Publisher.RateHz
	bridge.InvertDown = cfg.Publisher.InvertDown
	bridge.Scale = cfg.Publisher.Scale
	bridge.MountIndex = cfg.Publisher.MountIndex
	bridge.CameraFOV = cfg.Publisher.CameraFOV

	if cfg.Recorder.Enabled {
		store, err := recorder.Open(cfg.Recorder.Path)
		if err != nil {
			log.Fatal("unable to open flight recorder: ", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.WithError(err).Warn("unable to close flight recorder")
			}
		}()
		bridge.Recorder = store
	}

	if *printTelemetry {
		bridge.OnPublish = func(snap flightmanual.State) {
			fmt.Printf("%+v\n", snap.Rounded())
		}
	}

	if err := bridge.Run(context.Background()); err != nil {
		log.Fatal("bridge stopped: ", err)
	}
}
