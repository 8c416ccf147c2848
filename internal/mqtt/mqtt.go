// Package mqtt publishes repeater telemetry with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for repeater activity events.
const Topic = "radio/repeater/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "radio/repeater/system"

// Event type names published on Topic.
const (
	EventStateChange  = "STATE_CHANGE"
	EventAnnouncement = "ANNOUNCEMENT"
	EventRecording    = "RECORDING"
)

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a repeater activity event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is a repeater activity event: a state transition, an announcement
// result, or a recording disposition.
type Event struct {
	Timestamp time.Time
	Type      string // EventStateChange, EventAnnouncement, EventRecording
	State     string // activity state after the event
	Detail    string // e.g. "SLEEPING -> WAKING", "CW_ID", "kept 12.3s"
}

// SystemEvent represents a system lifecycle event
// (e.g. startup, shutdown, signal lost).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "SIGNAL_LOST"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Repeater RepeaterPayload `json:"repeater"`
}

// RepeaterPayload contains the repeater event details.
type RepeaterPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Detail    string `json:"detail,omitempty"`
}

// FormatPayload creates the JSON payload for a repeater event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Repeater: RepeaterPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Type,
			State:     event.State,
			Detail:    event.Detail,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
