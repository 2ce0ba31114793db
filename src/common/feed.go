package common

import (
	"sync"
)

// ReplayMode determines what a new Subscription receives before live values.
type ReplayMode int

const (
	// ReplayNone delivers only values sent after the subscription was made.
	ReplayNone ReplayMode = iota
	// ReplayLatest delivers the most recent value, if any, followed by live
	// values.
	ReplayLatest
	// ReplayAll delivers every value ever sent on the Feed, followed by live
	// values.
	ReplayAll
)

// Feed is a hot multicast stream of values. Each Subscription owns an
// unbounded queue so that Send never blocks on a slow reader, and values are
// delivered to every Subscription in the order they were sent.
//
// Subscribing is atomic with respect to Send: a new Subscription receives the
// replayed values and then exactly the values sent after it attached, never a
// duplicate and never a gap.
type Feed[T any] struct {
	mu sync.Mutex

	mode      ReplayMode
	log       []T
	latest    T
	hasLatest bool

	subs  map[*Subscription[T]]struct{}
	ended bool
	err   error

	onEmpty func()
}

// NewFeed creates a Feed with the given replay behaviour.
func NewFeed[T any](mode ReplayMode) *Feed[T] {
	return &Feed[T]{
		mode: mode,
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// OnEmpty registers a callback invoked, outside of the Feed's lock, every time
// the last Subscription is closed.
func (f *Feed[T]) OnEmpty(fn func()) {
	f.mu.Lock()
	f.onEmpty = fn
	f.mu.Unlock()
}

// Send publishes a value to all current subscribers. It is a no-op once the
// Feed has ended.
func (f *Feed[T]) Send(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ended {
		return
	}

	switch f.mode {
	case ReplayAll:
		f.log = append(f.log, v)
	case ReplayLatest:
		f.latest = v
		f.hasLatest = true
	}

	for s := range f.subs {
		s.push(v)
	}
}

// End terminates the Feed. Current subscribers drain their queues and then
// see their channel closed, with Err returning err. Later subscribers receive
// the replayed values and are ended immediately after.
func (f *Feed[T]) End(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ended {
		return
	}

	f.ended = true
	f.err = err

	for s := range f.subs {
		s.end(err)
	}
}

// Ended reports whether End has been called.
func (f *Feed[T]) Ended() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ended
}

// Latest returns the most recently sent value.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode == ReplayAll && len(f.log) > 0 {
		return f.log[len(f.log)-1], true
	}

	return f.latest, f.hasLatest
}

// Values returns a copy of the replay log. It is only populated in ReplayAll
// mode.
func (f *Feed[T]) Values() []T {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := make([]T, len(f.log))
	copy(res, f.log)
	return res
}

// Len returns the number of open subscriptions.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Subscribe attaches a new Subscription to the Feed.
func (f *Feed[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{
		feed:   f,
		c:      make(chan T),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	f.mu.Lock()

	switch f.mode {
	case ReplayAll:
		s.queue = append(s.queue, f.log...)
	case ReplayLatest:
		if f.hasLatest {
			s.queue = append(s.queue, f.latest)
		}
	}

	if f.ended {
		s.ended = true
		s.err = f.err
	} else {
		f.subs[s] = struct{}{}
	}

	f.mu.Unlock()

	go s.pump()

	return s
}

func (f *Feed[T]) unsubscribe(s *Subscription[T]) {
	f.mu.Lock()
	_, ok := f.subs[s]
	delete(f.subs, s)
	empty := ok && len(f.subs) == 0
	onEmpty := f.onEmpty
	f.mu.Unlock()

	if empty && onEmpty != nil {
		onEmpty()
	}
}

// Subscription is a single reader attached to a Feed.
type Subscription[T any] struct {
	feed *Feed[T]
	c    chan T

	mu     sync.Mutex
	queue  []T
	ended  bool
	err    error
	signal chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// C returns the channel on which values are delivered. It is closed when the
// Feed ends (after all queued values have been delivered) or when the
// Subscription is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.c
}

// Err returns the error the Feed ended with. It is only meaningful after C has
// been closed; nil means the Feed completed normally or the Subscription was
// closed by its owner.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed when the Subscription is closed by its owner.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Close detaches the Subscription from its Feed. Pending values are dropped.
// It is safe to call Close more than once.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.feed.unsubscribe(s)
	})
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) end(err error) {
	s.mu.Lock()
	s.ended = true
	s.err = err
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.c)

	var zero T

	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.ended {
			s.mu.Unlock()
			select {
			case <-s.signal:
			case <-s.done:
				return
			}
			s.mu.Lock()
		}

		if len(s.queue) == 0 {
			// ended and drained
			s.mu.Unlock()
			return
		}

		v := s.queue[0]
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.c <- v:
		case <-s.done:
			return
		}
	}
}
