package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	Busy          bool       `json:"busy"`
	Recording     bool       `json:"recording"`
	SignalLost    bool       `json:"signal_lost"`
	LastID        string     `json:"last_id,omitempty"`
	LastInfo      string     `json:"last_info,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the activity counters.
type CountsJSON struct {
	IDsPlayed    int `json:"ids_played"`
	InfosPlayed  int `json:"infos_played"`
	Skipped      int `json:"skipped"`
	RecKept      int `json:"recordings_kept"`
	RecDeleted   int `json:"recordings_deleted"`
	RecDiscarded int `json:"recordings_discarded"`
	StateChanges int `json:"state_changes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs     int64  `json:"poll_ms"`
	DebounceMs int64  `json:"debounce_ms"`
	Broker     string `json:"broker,omitempty"`
	HTTPAddr   string `json:"http_addr"`
	SerialPort string `json:"serial_port"`
	BusySource string `json:"busy_source"`
	FCCID      string `json:"fcc_id"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:         state,
		Busy:          snap.Busy,
		Recording:     snap.Recording,
		SignalLost:    snap.SignalLost,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			IDsPlayed:    snap.Counts.IDsPlayed,
			InfosPlayed:  snap.Counts.InfosPlayed,
			Skipped:      snap.Counts.Skipped,
			RecKept:      snap.Counts.RecKept,
			RecDeleted:   snap.Counts.RecDeleted,
			RecDiscarded: snap.Counts.RecDiscarded,
			StateChanges: snap.Counts.StateChanges,
		},
		Config: ConfigJSON{
			PollMs:     snap.Config.PollMs,
			DebounceMs: snap.Config.DebounceMs,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
			SerialPort: snap.Config.SerialPort,
			BusySource: snap.Config.BusySource,
			FCCID:      snap.Config.FCCID,
		},
	}
	if !snap.LastID.IsZero() {
		inner.LastID = snap.LastID.UTC().Format(time.RFC3339)
	}
	if !snap.LastInfo.IsZero() {
		inner.LastInfo = snap.LastInfo.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON renders a snapshot as the status JSON document.
func FormatJSON(snap Snapshot) []byte {
	doc := StatusJSON{Status: buildInner(snap)}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// Every field is a plain value; marshalling cannot fail.
		return []byte(`{"status":{}}`)
	}
	return b
}

// FormatStatusEvent renders a snapshot as a system event payload carrying
// the full status, used for STARTUP/SHUTDOWN/HEARTBEAT style messages.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	doc := StatusJSON{Status: inner}
	b, err := json.Marshal(doc)
	if err != nil {
		return []byte(`{"status":{}}`)
	}
	return b
}
