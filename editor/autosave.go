package editor

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Sentinel results for a skipped autosave attempt. The scheduler treats
// both as "nothing to do" rather than failures.
var (
	ErrNotDirty     = errors.New("buffer not dirty")
	ErrSaveInFlight = errors.New("save already in flight")
)

// AutoSaveState is the scheduler's current state.
type AutoSaveState int

const (
	StateIdle AutoSaveState = iota
	StateScheduled
	StateSaving
	StateRetryWait
	StateFailed
)

func (s AutoSaveState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateSaving:
		return "saving"
	case StateRetryWait:
		return "retry-wait"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// AutoSaveConfig controls the autosave scheduler.
type AutoSaveConfig struct {
	Enabled    bool          // whether autosave arms at all
	Interval   time.Duration // dirty time before an autosave attempt
	MaxRetries int           // retry attempts after the first failure
	RetryDelay time.Duration // delay between retry attempts
}

// DefaultAutoSaveConfig returns the standard autosave settings.
func DefaultAutoSaveConfig() AutoSaveConfig {
	return AutoSaveConfig{
		Enabled:    true,
		Interval:   30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

func (c AutoSaveConfig) normalized() AutoSaveConfig {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

type schedCmd int

const (
	cmdArm schedCmd = iota
	cmdCancel
)

// AutoSaveScheduler triggers persistence when the buffer stays dirty for
// the configured interval, with a bounded retry cycle on failure. All
// scheduling runs on a single goroutine; commands arrive over one
// channel so arm/cancel ordering is preserved.
type AutoSaveScheduler struct {
	cfg       AutoSaveConfig
	attempt   func(ctx context.Context) error
	onExhaust func(err error)

	cmdCh    chan schedCmd
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	state AutoSaveState
}

func newAutoSaveScheduler(cfg AutoSaveConfig, attempt func(ctx context.Context) error, onExhaust func(err error)) *AutoSaveScheduler {
	a := &AutoSaveScheduler{
		cfg:       cfg.normalized(),
		attempt:   attempt,
		onExhaust: onExhaust,
		cmdCh:     make(chan schedCmd, 16),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	a.cfg.Enabled = cfg.Enabled
	go a.run()
	return a
}

// Arm schedules an autosave attempt after the interval. No-op when
// autosave is disabled or an attempt is already scheduled or running.
func (a *AutoSaveScheduler) Arm() {
	if !a.cfg.Enabled {
		return
	}
	a.send(cmdArm)
}

// Cancel aborts a pending timer or retry wait. An attempt already
// calling the persistence function is not interrupted; it will skip on
// its own when the buffer is clean.
func (a *AutoSaveScheduler) Cancel() {
	if !a.cfg.Enabled {
		return
	}
	a.send(cmdCancel)
}

// Stop terminates the scheduler goroutine, cancelling any pending
// timer, and waits for it to exit.
func (a *AutoSaveScheduler) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
	<-a.done
}

// State reports the scheduler's current state.
func (a *AutoSaveScheduler) State() AutoSaveState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AutoSaveScheduler) setState(s AutoSaveState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func (a *AutoSaveScheduler) send(cmd schedCmd) {
	select {
	case a.cmdCh <- cmd:
	case <-a.stopCh:
	}
}

// run is the scheduler's main loop.
func (a *AutoSaveScheduler) run() {
	defer close(a.done)

	timer := time.NewTimer(a.cfg.Interval)
	stopTimer(timer)

	for {
		select {
		case cmd := <-a.cmdCh:
			switch cmd {
			case cmdArm:
				// Only arm from idle; a running timer is not reset.
				if a.State() == StateIdle {
					a.setState(StateScheduled)
					timer.Reset(a.cfg.Interval)
				}
			case cmdCancel:
				if a.State() == StateScheduled {
					stopTimer(timer)
					a.setState(StateIdle)
				}
			}
		case <-timer.C:
			if !a.attemptCycle() {
				return
			}
		case <-a.stopCh:
			stopTimer(timer)
			return
		}
	}
}

// attemptCycle performs one save attempt plus up to MaxRetries retries.
// The retry bound is an explicit counter; there is no timer rescheduling
// chain. Returns false when the scheduler was stopped mid-cycle.
func (a *AutoSaveScheduler) attemptCycle() bool {
	retries := 0
	for {
		a.setState(StateSaving)
		err := a.attempt(context.Background())
		if err == nil || errors.Is(err, ErrNotDirty) || errors.Is(err, ErrSaveInFlight) {
			a.setState(StateIdle)
			return true
		}

		if retries >= a.cfg.MaxRetries {
			// Exhausted: report exactly once, reset, return to idle with
			// the buffer still dirty so a later edit or manual save can
			// try again.
			a.setState(StateFailed)
			if a.onExhaust != nil {
				a.onExhaust(err)
			}
			a.setState(StateIdle)
			return true
		}
		retries++

		a.setState(StateRetryWait)
		wait := time.NewTimer(a.cfg.RetryDelay)
	waiting:
		for {
			select {
			case <-wait.C:
				break waiting
			case cmd := <-a.cmdCh:
				if cmd == cmdCancel {
					stopTimer(wait)
					a.setState(StateIdle)
					return true
				}
				// Arm during a retry cycle: the cycle already covers it.
			case <-a.stopCh:
				stopTimer(wait)
				return false
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
