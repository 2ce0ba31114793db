package network

import (
	"context"
	"sync"

	"github.com/radixdlt/radix-go/src/common"
	"github.com/sirupsen/logrus"
)

// StateSource gives epics read access to the network state.
type StateSource interface {
	// State returns the latest snapshot. When an epic receives an action, the
	// snapshot already includes the effect of that action.
	State() *NetworkState
	// ObserveState delivers the current snapshot, then every new one.
	ObserveState() *common.Subscription[*NetworkState]
}

// Epic turns actions into more actions. Epics never modify the state
// themselves; they see it through the StateSource and act on the world
// (sockets, RPC calls) on behalf of the controller.
//
// Run must return when ctx is cancelled. It must not stop reading actions
// while it runs, and it may write to out from any goroutine until it returns.
type Epic interface {
	Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction)
}

// EpicFunc adapts a function to the Epic interface.
type EpicFunc func(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction)

// Run implements Epic.
func (f EpicFunc) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
	f(ctx, actions, state, out)
}

/*
Controller owns the network state and the action bus.

A single goroutine takes dispatched actions in order, reduces them into the
state, publishes the new snapshot if it changed, and then hands the action to
every epic and every external action observer. Whatever the epics emit is
dispatched back onto the bus.

Dispatch never blocks: the queue is unbounded.
*/
type Controller struct {
	logger  *logrus.Entry
	metrics *Metrics
	epics   []Epic

	mu     sync.Mutex
	state  *NetworkState
	queue  []NodeAction
	closed bool
	signal chan struct{}

	stateFeed  *common.Feed[*NetworkState]
	actionFeed *common.Feed[NodeAction]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller. Nothing runs until Start.
func NewController(initial *NetworkState, epics []Epic, metrics *Metrics, logger *logrus.Entry) *Controller {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	if initial == nil {
		initial = NewNetworkState()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		logger:     logger,
		metrics:    metrics,
		epics:      epics,
		state:      initial,
		signal:     make(chan struct{}, 1),
		stateFeed:  common.NewFeed[*NetworkState](common.ReplayLatest),
		actionFeed: common.NewFeed[NodeAction](common.ReplayNone),
		ctx:        ctx,
		cancel:     cancel,
	}

	c.stateFeed.Send(initial)
	c.metrics.observeState(initial)

	return c
}

// Start launches the epics and the reducer loop.
func (c *Controller) Start() {
	for _, e := range c.epics {
		// subscribe before anything is dispatched so no action is missed
		in := c.actionFeed.Subscribe()
		out := make(chan NodeAction)

		c.wg.Add(2)

		go func(e Epic) {
			defer c.wg.Done()
			defer in.Close()
			e.Run(c.ctx, in.C(), c, out)
		}(e)

		go func() {
			defer c.wg.Done()
			c.forward(out)
		}()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loop()
	}()
}

// forward re-dispatches epic outputs until the controller is closed.
func (c *Controller) forward(out <-chan NodeAction) {
	for {
		select {
		case a := <-out:
			c.Dispatch(a)
		case <-c.ctx.Done():
			return
		}
	}
}

// Dispatch queues an action. It never blocks and is a no-op after Close.
func (c *Controller) Dispatch(action NodeAction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.queue = append(c.queue, action)

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *Controller) next() (NodeAction, bool) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			a := c.queue[0]
			c.queue[0] = nil
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return a, true
		}
		c.mu.Unlock()

		select {
		case <-c.signal:
		case <-c.ctx.Done():
			return nil, false
		}
	}
}

func (c *Controller) loop() {
	for {
		action, ok := c.next()
		if !ok {
			return
		}

		c.logger.WithField("action", action.Name()).Debug("Dispatch")
		c.metrics.observeAction(action)

		c.mu.Lock()
		prev := c.state
		next := Reduce(prev, action)
		c.state = next
		c.mu.Unlock()

		if next != prev {
			c.stateFeed.Send(next)
			c.metrics.observeState(next)
		}

		c.actionFeed.Send(action)
	}
}

// State implements StateSource.
func (c *Controller) State() *NetworkState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ObserveState implements StateSource.
func (c *Controller) ObserveState() *common.Subscription[*NetworkState] {
	return c.stateFeed.Subscribe()
}

// ObserveActions delivers every action after it has been reduced.
func (c *Controller) ObserveActions() *common.Subscription[NodeAction] {
	return c.actionFeed.Subscribe()
}

// Close stops the loop and the epics and waits for them to return. Observers
// see their subscriptions complete.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.stateFeed.End(nil)
	c.actionFeed.End(nil)
}
