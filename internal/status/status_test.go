package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/repeater-controller/internal/logic"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 100, DebounceMs: 50, Broker: "tcp://localhost:1883", HTTPAddr: ":8080", FCCID: "WRXC682"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.State != logic.StateActive {
		t.Errorf("State: got %q, want ACTIVE", snap.State)
	}
	if snap.Config.PollMs != 100 {
		t.Errorf("Config.PollMs: got %d, want 100", snap.Config.PollMs)
	}
	if snap.Config.FCCID != "WRXC682" {
		t.Errorf("Config.FCCID: got %q, want WRXC682", snap.Config.FCCID)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	lastID := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tr.Update(logic.StateWaking, true, true, false, lastID, time.Time{}, Counts{IDsPlayed: 3, RecKept: 1})

	snap := tr.Snapshot()
	if snap.State != logic.StateWaking {
		t.Errorf("State: got %q, want WAKING", snap.State)
	}
	if !snap.Busy {
		t.Error("expected Busy=true")
	}
	if !snap.Recording {
		t.Error("expected Recording=true")
	}
	if snap.SignalLost {
		t.Error("expected SignalLost=false")
	}
	if !snap.LastID.Equal(lastID) {
		t.Errorf("LastID: got %v, want %v", snap.LastID, lastID)
	}
	if snap.Counts.IDsPlayed != 3 {
		t.Errorf("Counts.IDsPlayed: got %d, want 3", snap.Counts.IDsPlayed)
	}
	if snap.Counts.RecKept != 1 {
		t.Errorf("Counts.RecKept: got %d, want 1", snap.Counts.RecKept)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(logic.StateSleeping, false, false, false, time.Time{}, time.Time{}, Counts{StateChanges: 1})

	snap1 := tr.Snapshot()

	tr.Update(logic.StateActive, true, true, false, time.Time{}, time.Time{}, Counts{StateChanges: 2})

	// snap1 should still reflect old state
	if snap1.State != logic.StateSleeping {
		t.Error("snapshot should be a copy; State was modified")
	}
	if snap1.Counts.StateChanges != 1 {
		t.Error("snapshot should be a copy; Counts were modified")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update(logic.StateActive, n%2 == 0, false, false, time.Time{}, time.Time{}, Counts{})
				tr.Snapshot()
			}
		}(i)
	}
	wg.Wait()
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		State:         logic.StateActive,
		Busy:          true,
		Recording:     true,
		LastID:        start.Add(5 * time.Minute),
		Counts:        Counts{IDsPlayed: 5, InfosPlayed: 2, RecKept: 3, RecDeleted: 1},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{PollMs: 100, DebounceMs: 50, Broker: "tcp://localhost:1883", HTTPAddr: ":8080", SerialPort: "/dev/ttyUSB0", BusySource: "serial", FCCID: "WRXC682"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.State != "ACTIVE" {
		t.Errorf("State: got %q, want ACTIVE", parsed.Status.State)
	}
	if !parsed.Status.Busy {
		t.Error("expected busy=true")
	}
	if !parsed.Status.Recording {
		t.Error("expected recording=true")
	}
	if parsed.Status.LastID != "2026-01-01T00:05:00Z" {
		t.Errorf("LastID: got %q", parsed.Status.LastID)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Counts.IDsPlayed != 5 {
		t.Errorf("Counts.IDsPlayed: got %d, want 5", parsed.Status.Counts.IDsPlayed)
	}
	if parsed.Status.Config.FCCID != "WRXC682" {
		t.Errorf("Config.FCCID: got %q", parsed.Status.Config.FCCID)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", parsed.Status.Reason)
	}
}

func TestFormatJSONUnknownState(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)

	if parsed.Status.State != "UNKNOWN" {
		t.Errorf("State: got %q, want UNKNOWN", parsed.Status.State)
	}
}

func TestFormatJSONOmitsZeroAnnouncementTimes(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatJSON(snap)

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	status := parsed["status"].(map[string]interface{})
	if _, exists := status["last_id"]; exists {
		t.Error("last_id should be omitted before the first announcement")
	}
	if _, exists := status["last_info"]; exists {
		t.Error("last_info should be omitted before the first announcement")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		State:         logic.StateSleeping,
		Counts:        Counts{StateChanges: 4},
		StartTime:     start,
		Now:           start.Add(30 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
	if parsed.Status.State != "SLEEPING" {
		t.Errorf("State: got %q, want SLEEPING", parsed.Status.State)
	}
	if parsed.Status.UptimeSeconds != 1800 {
		t.Errorf("UptimeSeconds: got %d, want 1800", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Now:       time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	status := parsed["status"].(map[string]interface{})
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
}
