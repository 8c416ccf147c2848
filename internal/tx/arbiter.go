// Package tx serializes access to the single transmit path: the keying
// line on the interface board plus the soundcard output feeding it.
package tx

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sweeney/repeater-controller/internal/schedule"
)

// Keyer drives the transmit-enable control line.
type Keyer interface {
	Key() error
	Unkey() error
}

// Player plays one audio clip into the transmit path, blocking until
// playback completes.
type Player interface {
	Play(path string) error
}

// BusyChecker reports the current debounced state of the receive channel.
type BusyChecker interface {
	IsBusy() bool
}

// Rejection sentinels. Both are expected outcomes of arbitration, not
// faults: the caller owns rescheduling policy.
var (
	ErrChannelBusy = errors.New("tx: channel busy")
	ErrLeaseHeld   = errors.New("tx: transmit lease already held")
)

// Arbiter grants at most one transmit lease at a time and never keys over
// live receive traffic. The unkey/release sequence runs on every exit
// path, so a failed playback cannot starve a later request.
type Arbiter struct {
	keyer     Keyer
	player    Player
	channel   BusyChecker
	preDelay  time.Duration
	postDelay time.Duration
	logger    *log.Logger

	// sleep is swapped out in tests to avoid real waits.
	sleep func(time.Duration)

	mu     sync.Mutex
	leased bool
}

// New creates an Arbiter around the given transmit-path collaborators.
func New(keyer Keyer, player Player, channel BusyChecker, preDelay, postDelay time.Duration, logger *log.Logger) *Arbiter {
	return &Arbiter{
		keyer:     keyer,
		player:    player,
		channel:   channel,
		preDelay:  preDelay,
		postDelay: postDelay,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Transmit keys the transmitter, plays the job's clip and unkeys.
// It rejects synchronously with ErrChannelBusy or ErrLeaseHeld; once
// accepted the job runs to completion and is never aborted mid-transmit.
func (a *Arbiter) Transmit(job schedule.Job) error {
	if err := a.acquire(); err != nil {
		return err
	}
	defer a.release()

	if err := a.keyer.Key(); err != nil {
		return fmt.Errorf("key transmitter: %w", err)
	}
	defer func() {
		a.sleep(a.postDelay)
		if err := a.keyer.Unkey(); err != nil {
			a.logger.Error("unkey transmitter", "err", err)
		}
	}()

	a.sleep(a.preDelay)
	if err := a.player.Play(job.AudioPath); err != nil {
		return fmt.Errorf("play %s: %w", job.Kind, err)
	}
	return nil
}

// Leased reports whether a transmit lease is currently held.
func (a *Arbiter) Leased() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.leased
}

func (a *Arbiter) acquire() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.leased {
		return ErrLeaseHeld
	}
	if a.channel.IsBusy() {
		return ErrChannelBusy
	}
	a.leased = true
	return nil
}

func (a *Arbiter) release() {
	a.mu.Lock()
	a.leased = false
	a.mu.Unlock()
}

// Rejected reports whether err is a normal arbitration rejection rather
// than a transmit-path fault.
func Rejected(err error) bool {
	return errors.Is(err, ErrChannelBusy) || errors.Is(err, ErrLeaseHeld)
}
