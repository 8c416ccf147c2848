package tx

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/repeater-controller/internal/schedule"
)

// sequenceRecorder implements Keyer and Player and records the order of
// key, sleep, play and unkey steps.
type sequenceRecorder struct {
	mu       sync.Mutex
	steps    []string
	keyErr   error
	playErr  error
	playFunc func()
}

func (r *sequenceRecorder) record(step string) {
	r.mu.Lock()
	r.steps = append(r.steps, step)
	r.mu.Unlock()
}

func (r *sequenceRecorder) Key() error {
	r.record("key")
	return r.keyErr
}

func (r *sequenceRecorder) Unkey() error {
	r.record("unkey")
	return nil
}

func (r *sequenceRecorder) Play(path string) error {
	r.record("play " + path)
	if r.playFunc != nil {
		r.playFunc()
	}
	return r.playErr
}

func (r *sequenceRecorder) sleep(d time.Duration) {
	r.record("sleep " + d.String())
}

type staticBusy bool

func (b staticBusy) IsBusy() bool { return bool(b) }

func newTestArbiter(rec *sequenceRecorder, busy BusyChecker) *Arbiter {
	a := New(rec, rec, busy, time.Second, 2*time.Second, log.New(io.Discard))
	a.sleep = rec.sleep
	return a
}

func testJob() schedule.Job {
	return schedule.Job{Kind: schedule.KindID, AudioPath: "sounds/cw_id.wav"}
}

func TestTransmitSequence(t *testing.T) {
	rec := &sequenceRecorder{}
	a := newTestArbiter(rec, staticBusy(false))

	require.NoError(t, a.Transmit(testJob()))

	assert.Equal(t, []string{
		"key",
		"sleep 1s",
		"play sounds/cw_id.wav",
		"sleep 2s",
		"unkey",
	}, rec.steps)
	assert.False(t, a.Leased(), "lease released after transmit")
}

func TestTransmitRejectedWhileBusy(t *testing.T) {
	rec := &sequenceRecorder{}
	a := newTestArbiter(rec, staticBusy(true))

	err := a.Transmit(testJob())
	require.ErrorIs(t, err, ErrChannelBusy)
	assert.True(t, Rejected(err))
	assert.Empty(t, rec.steps, "must never key over live traffic")
}

func TestTransmitReleasesAfterPlaybackFailure(t *testing.T) {
	rec := &sequenceRecorder{playErr: errors.New("corrupt file")}
	a := newTestArbiter(rec, staticBusy(false))

	err := a.Transmit(testJob())
	require.Error(t, err)
	assert.False(t, Rejected(err), "playback failure is a fault, not a rejection")

	// The un-key sequence must complete even though playback failed.
	assert.Equal(t, []string{
		"key",
		"sleep 1s",
		"play sounds/cw_id.wav",
		"sleep 2s",
		"unkey",
	}, rec.steps)
	assert.False(t, a.Leased())

	// A later transmit is not starved by the failed one.
	rec.playErr = nil
	rec.steps = nil
	require.NoError(t, a.Transmit(testJob()))
}

func TestTransmitReleasesAfterKeyFailure(t *testing.T) {
	rec := &sequenceRecorder{keyErr: errors.New("ioctl failed")}
	a := newTestArbiter(rec, staticBusy(false))

	err := a.Transmit(testJob())
	require.Error(t, err)
	assert.False(t, a.Leased())
}

func TestTransmitRejectedWhileLeaseHeld(t *testing.T) {
	rec := &sequenceRecorder{}
	a := newTestArbiter(rec, staticBusy(false))

	inPlay := make(chan struct{})
	releasePlay := make(chan struct{})
	rec.playFunc = func() {
		close(inPlay)
		<-releasePlay
	}

	done := make(chan error, 1)
	go func() { done <- a.Transmit(testJob()) }()

	<-inPlay
	err := a.Transmit(schedule.Job{Kind: schedule.KindRptInfo, AudioPath: "sounds/repeater_info.wav"})
	require.ErrorIs(t, err, ErrLeaseHeld)
	assert.True(t, Rejected(err))

	close(releasePlay)
	require.NoError(t, <-done)
}

// At most one lease may be live at any instant, however many goroutines
// are asking.
func TestSingleLeaseUnderConcurrency(t *testing.T) {
	rec := &sequenceRecorder{}

	var live, maxLive, granted int32
	rec.playFunc = func() {
		n := atomic.AddInt32(&live, 1)
		for {
			m := atomic.LoadInt32(&maxLive)
			if n <= m || atomic.CompareAndSwapInt32(&maxLive, m, n) {
				break
			}
		}
		atomic.AddInt32(&live, -1)
	}

	a := newTestArbiter(rec, staticBusy(false))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Transmit(testJob()); err == nil {
				atomic.AddInt32(&granted, 1)
			} else if !Rejected(err) {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxLive, int32(1), "two leases were live at once")
	assert.GreaterOrEqual(t, granted, int32(1), "at least one transmit should win")
}
