// Command repeater-controller runs a radio repeater: it watches the
// channel-busy signal, plays scheduled identification and info
// announcements without keying over traffic, and records received
// transmissions.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/sweeney/repeater-controller/internal/audio"
	"github.com/sweeney/repeater-controller/internal/config"
	"github.com/sweeney/repeater-controller/internal/controller"
	"github.com/sweeney/repeater-controller/internal/gpio"
	"github.com/sweeney/repeater-controller/internal/logic"
	"github.com/sweeney/repeater-controller/internal/mqtt"
	"github.com/sweeney/repeater-controller/internal/recording"
	"github.com/sweeney/repeater-controller/internal/schedule"
	"github.com/sweeney/repeater-controller/internal/serial"
	"github.com/sweeney/repeater-controller/internal/status"
	"github.com/sweeney/repeater-controller/internal/tx"
	"github.com/sweeney/repeater-controller/internal/web"
)

func main() {
	poll := pflag.Duration("poll", 100*time.Millisecond, "busy line polling interval")
	httpAddr := pflag.String("http", ":8080", "HTTP status address (empty to disable)")
	broker := pflag.String("broker", "", "MQTT broker address (empty to disable telemetry)")
	printState := pflag.Bool("print-state", false, "print the busy line state and exit")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if err := run(*poll, *httpAddr, *broker, *printState, logger); err != nil {
		logger.Fatal("fatal", "err", err)
	}
}

func run(poll time.Duration, httpAddr, broker string, printState bool, logger *log.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	source, keyer, cleanup, err := openHardware(cfg)
	if err != nil {
		return fmt.Errorf("init hardware: %w", err)
	}
	defer cleanup()

	// Print state mode
	if printState {
		busy, err := source.ReadBusy()
		if err != nil {
			return fmt.Errorf("read busy line: %w", err)
		}
		fmt.Println(stateString(busy))
		return nil
	}

	if err := cfg.CheckClips(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(cfg.RecordingsDir, 0o755); err != nil {
		return fmt.Errorf("create recordings dir: %w", err)
	}

	// Initialize MQTT
	var publisher mqtt.Publisher
	var connStatus mqtt.ConnectionStatus
	if broker != "" {
		real, err := mqtt.NewRealPublisher(broker, logger.With("component", "mqtt"))
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		connStatus = real
	}

	startTime := time.Now()
	tracker := status.NewTracker(startTime, trackerConfig(cfg, poll, httpAddr, broker))

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			logger.Error("publish startup event", "err", err)
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", "addr", httpAddr)
	}

	debouncer := logic.NewDebouncer(cfg.Debounce)
	machine := logic.NewMachine(cfg.SleepAfter, cfg.WakeAfter, startTime)
	scheduler := schedule.New(schedule.Config{
		IDPeriod:          cfg.IDPeriod,
		RptInfoPeriod:     cfg.RptInfoPeriod,
		IDWhenAsleep:      cfg.IDWhenAsleep,
		RptInfoWhenAsleep: cfg.RptInfoWhenAsleep,
		IDClip:            cfg.IDClip(),
		RptInfoClip:       cfg.RptInfoClip(),
	})
	arbiter := tx.New(keyer, audio.SoxPlayer{}, debouncer, cfg.PreTXDelay, cfg.PostTXDelay, logger.With("component", "tx"))
	recordings := recording.NewManager(audio.SoxRecorder{}, cfg.RecordingsDir, cfg.MinRecording, logger.With("component", "recording"))

	ctrl := controller.New(controller.Deps{
		Source:     source,
		Debouncer:  debouncer,
		Machine:    machine,
		Scheduler:  scheduler,
		Arbiter:    arbiter,
		Recordings: recordings,
		Publisher:  publisher,
		ConnStatus: connStatus,
		Tracker:    tracker,
		Logger:     logger,
		StaleAfter: cfg.StaleSignal,
	})

	logger.Info("started",
		"fcc_id", cfg.FCCID,
		"busy_source", cfg.BusySource,
		"poll", poll,
		"debounce", cfg.Debounce,
		"sleep_after", cfg.SleepAfter,
		"wake_after", cfg.WakeAfter)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return ctrl.Run(time.Now, ticker.C, sigCh)
}

// openHardware builds the busy source and keyer from the configured
// backends. The serial port serves as both when both sides use it.
func openHardware(cfg config.Config) (controller.BusySource, tx.Keyer, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var port *serial.Port
	if cfg.BusySource == config.SourceSerial || cfg.PTTMethod == config.SourceSerial {
		p, err := serial.Open(cfg.SerialPort)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanups = append(cleanups, func() { p.Close() })
		port = p
	}

	var source controller.BusySource
	if cfg.BusySource == config.SourceSerial {
		source = port
	} else {
		line, err := gpio.NewBusyLine(cfg.GPIOChip, cfg.BusyPin)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		cleanups = append(cleanups, func() { line.Close() })
		source = line
	}

	var keyer tx.Keyer
	if cfg.PTTMethod == config.SourceSerial {
		keyer = port
	} else {
		line, err := gpio.NewPTTLine(cfg.GPIOChip, cfg.PTTPin)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		cleanups = append(cleanups, func() { line.Close() })
		keyer = line
	}

	return source, keyer, cleanup, nil
}

func trackerConfig(cfg config.Config, poll time.Duration, httpAddr, broker string) status.Config {
	return status.Config{
		PollMs:     poll.Milliseconds(),
		DebounceMs: cfg.Debounce.Milliseconds(),
		Broker:     broker,
		HTTPAddr:   httpAddr,
		SerialPort: cfg.SerialPort,
		BusySource: cfg.BusySource,
		FCCID:      cfg.FCCID,
	}
}

func stateString(busy bool) string {
	if busy {
		return "busy"
	}
	return "idle"
}
