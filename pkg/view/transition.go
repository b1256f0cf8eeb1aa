// Package view renders results and lists for the terminal and owns the
// list/detail transition state used by the interactive browsing commands.
package view

import (
	"context"
	"sync"
	"time"
)

// TransitionState is the single enumerated state of the list/detail flow.
// It replaces the show/hide/animating boolean matrix the original client
// duplicated across its list components.
type TransitionState int

const (
	ListVisible TransitionState = iota
	EnteringDetail
	DetailVisible
	ExitingDetail
)

func (s TransitionState) String() string {
	switch s {
	case ListVisible:
		return "list"
	case EnteringDetail:
		return "entering-detail"
	case DetailVisible:
		return "detail"
	case ExitingDetail:
		return "exiting-detail"
	default:
		return "unknown"
	}
}

// DefaultTransitionDuration mirrors the original UI transition timing.
const DefaultTransitionDuration = 260 * time.Millisecond

// Controller drives the transition state with one timer. At most one detail
// load is live at a time: entering a new detail cancels the context of the
// previous one, so a stale in-flight result is never applied.
type Controller struct {
	mu         sync.Mutex
	state      TransitionState
	duration   time.Duration
	timer      *time.Timer
	cancelLoad context.CancelFunc

	// OnChange, when set, observes every state change. Called outside the lock.
	OnChange func(TransitionState)
}

// NewController starts in ListVisible. Zero duration uses the default.
func NewController(duration time.Duration) *Controller {
	if duration <= 0 {
		duration = DefaultTransitionDuration
	}
	return &Controller{state: ListVisible, duration: duration}
}

// State returns the current transition state.
func (c *Controller) State() TransitionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// EnterDetail begins the list→detail transition and returns a context for the
// detail load. Any outstanding load from a previous EnterDetail is cancelled
// first. After the transition duration the state settles on DetailVisible.
func (c *Controller) EnterDetail(parent context.Context) context.Context {
	c.mu.Lock()
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancelLoad = cancel
	c.setStateLocked(EnteringDetail)
	c.armTimerLocked(DetailVisible)
	c.mu.Unlock()
	return ctx
}

// ExitDetail begins the detail→list transition, cancelling any pending load.
// After the transition duration the state settles on ListVisible.
func (c *Controller) ExitDetail() {
	c.mu.Lock()
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.setStateLocked(ExitingDetail)
	c.armTimerLocked(ListVisible)
	c.mu.Unlock()
}

// Close cancels any pending load and stops the timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// armTimerLocked schedules the settle transition, replacing any pending timer
// so overlapping transitions never race.
func (c *Controller) armTimerLocked(target TransitionState) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.duration, func() {
		c.mu.Lock()
		// Only settle if no newer transition superseded this one.
		if (target == DetailVisible && c.state == EnteringDetail) ||
			(target == ListVisible && c.state == ExitingDetail) {
			c.setStateLocked(target)
		}
		c.mu.Unlock()
	})
}

func (c *Controller) setStateLocked(s TransitionState) {
	c.state = s
	if c.OnChange != nil {
		onChange := c.OnChange
		go onChange(s)
	}
}
