// Package config loads the controller parameters from the environment.
// Every key has a default; an unparseable or out-of-range value is fatal
// at startup, never silently corrected.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Busy source and PTT method selectors.
const (
	SourceSerial = "serial"
	SourceGPIO   = "gpio"
)

// Clip filenames looked up under SoundsDir.
const (
	IDClipName      = "cw_id.wav"
	RptInfoClipName = "repeater_info.wav"
)

// Config is the immutable parameter set read once at startup.
type Config struct {
	SerialPort string
	BusySource string // SourceSerial or SourceGPIO
	PTTMethod  string // SourceSerial or SourceGPIO
	GPIOChip   string
	BusyPin    int
	PTTPin     int

	PreTXDelay  time.Duration
	PostTXDelay time.Duration

	IDPeriod          time.Duration
	RptInfoPeriod     time.Duration
	IDWhenAsleep      bool
	RptInfoWhenAsleep bool

	SleepAfter   time.Duration
	WakeAfter    time.Duration
	MinRecording time.Duration
	Debounce     time.Duration
	StaleSignal  time.Duration

	SoundsDir     string
	RecordingsDir string
	FCCID         string
}

// FromEnv builds a Config from environment variables, applying defaults
// and validating the result.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		SerialPort:        envString("SERIAL_PORT", "/dev/ttyUSB0"),
		BusySource:        envString("BUSY_SOURCE", SourceSerial),
		PTTMethod:         envString("PTT_METHOD", SourceSerial),
		GPIOChip:          envString("GPIO_CHIP", "gpiochip0"),
		BusyPin:           envInt("BUSY_GPIO_PIN", 26, &errs),
		PTTPin:            envInt("PTT_GPIO_PIN", 16, &errs),
		PreTXDelay:        envSeconds("PRE_TX_DELAY", 1.0, &errs),
		PostTXDelay:       envSeconds("POST_TX_DELAY", 1.0, &errs),
		IDPeriod:          envMinutes("ID_MINS", 15, &errs),
		RptInfoPeriod:     envMinutes("RPT_INFO_MINS", 60, &errs),
		IDWhenAsleep:      envBool("ID_WHEN_ASLEEP", true, &errs),
		RptInfoWhenAsleep: envBool("RPT_INFO_WHEN_ASLEEP", false, &errs),
		SleepAfter:        envMinutes("SLEEP_AFTER_MINS", 30, &errs),
		WakeAfter:         envWholeSeconds("WAKE_AFTER_SEC", 2, &errs),
		MinRecording:      envWholeSeconds("MIN_REC_SEC", 2, &errs),
		Debounce:          envMillis("DEBOUNCE_MS", 50, &errs),
		StaleSignal:       envWholeSeconds("STALE_SIGNAL_SEC", 30, &errs),
		SoundsDir:         envString("SOUNDS_DIR", "sounds"),
		RecordingsDir:     envString("RECORDINGS_DIR", "recordings"),
		FCCID:             envString("FCC_ID", "WRXC682"),
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks ranges and selector values.
func (c Config) Validate() error {
	var errs []error

	if c.PreTXDelay < 0 {
		errs = append(errs, fmt.Errorf("PRE_TX_DELAY must not be negative: %v", c.PreTXDelay))
	}
	if c.PostTXDelay < 0 {
		errs = append(errs, fmt.Errorf("POST_TX_DELAY must not be negative: %v", c.PostTXDelay))
	}
	for _, p := range []struct {
		key string
		val time.Duration
	}{
		{"ID_MINS", c.IDPeriod},
		{"RPT_INFO_MINS", c.RptInfoPeriod},
		{"SLEEP_AFTER_MINS", c.SleepAfter},
		{"WAKE_AFTER_SEC", c.WakeAfter},
		{"MIN_REC_SEC", c.MinRecording},
		{"DEBOUNCE_MS", c.Debounce},
		{"STALE_SIGNAL_SEC", c.StaleSignal},
	} {
		if p.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive: %v", p.key, p.val))
		}
	}
	if c.BusySource != SourceSerial && c.BusySource != SourceGPIO {
		errs = append(errs, fmt.Errorf("BUSY_SOURCE must be %q or %q: %q", SourceSerial, SourceGPIO, c.BusySource))
	}
	if c.PTTMethod != SourceSerial && c.PTTMethod != SourceGPIO {
		errs = append(errs, fmt.Errorf("PTT_METHOD must be %q or %q: %q", SourceSerial, SourceGPIO, c.PTTMethod))
	}

	return errors.Join(errs...)
}

// CheckClips verifies that both announcement clips exist. A missing asset
// is a configuration error, not a runtime fault.
func (c Config) CheckClips() error {
	var errs []error
	for _, clip := range []string{c.IDClip(), c.RptInfoClip()} {
		if _, err := os.Stat(clip); err != nil {
			errs = append(errs, fmt.Errorf("announcement clip: %w", err))
		}
	}
	return errors.Join(errs...)
}

// IDClip returns the path of the station-identification clip.
func (c Config) IDClip() string {
	return filepath.Join(c.SoundsDir, IDClipName)
}

// RptInfoClip returns the path of the repeater-information clip.
func (c Config) RptInfoClip() string {
	return filepath.Join(c.SoundsDir, RptInfoClipName)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func envBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

// envSeconds parses a float number of seconds.
func envSeconds(key string, def float64, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def * float64(time.Second))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return time.Duration(def * float64(time.Second))
	}
	return time.Duration(f * float64(time.Second))
}

func envWholeSeconds(key string, def int, errs *[]error) time.Duration {
	return time.Duration(envInt(key, def, errs)) * time.Second
}

func envMinutes(key string, def int, errs *[]error) time.Duration {
	return time.Duration(envInt(key, def, errs)) * time.Minute
}

func envMillis(key string, def int, errs *[]error) time.Duration {
	return time.Duration(envInt(key, def, errs)) * time.Millisecond
}
