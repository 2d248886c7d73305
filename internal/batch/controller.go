package batch

import (
	"sync"
	"sync/atomic"
)

// Controller is a set-once cooperative stop flag. It is safe to call from
// any goroutine, including signal handlers.
type Controller struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// NewController returns a controller in the running state.
func NewController() *Controller {
	return &Controller{done: make(chan struct{})}
}

// RequestStop raises the flag. It reports true only for the call that
// actually changed the state; later calls are no-ops.
func (c *Controller) RequestStop() bool {
	first := false
	c.once.Do(func() {
		c.stopped.Store(true)
		close(c.done)
		first = true
	})
	return first
}

// Stopped reports whether a stop was requested. It never blocks.
func (c *Controller) Stopped() bool {
	return c.stopped.Load()
}

// Done is closed once a stop is requested.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Context bundles the state shared between the executor and the reporting
// layer for a single run.
type Context struct {
	Tracker    *Tracker
	Controller *Controller
}

// NewContext returns an empty tracker and a running controller.
func NewContext() *Context {
	return &Context{
		Tracker:    NewTracker(),
		Controller: NewController(),
	}
}
