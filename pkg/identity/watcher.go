package identity

import "sync"

// State of the session as observed by the gate.
type State int

const (
	// StateUnknown means session status has not been determined yet.
	// Consumers must render a neutral waiting state, never treat it as
	// anonymous.
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

const watcherBuffer = 16

// Watcher is a subscription to session-state changes. The first event is the
// transition out of StateUnknown, delivered as soon as the client resolves
// the session (or immediately, when it is already resolved); after that, one
// event per provider-pushed change.
type Watcher struct {
	client *Client
	id     int
	ch     chan State
	once   sync.Once
}

// Watch subscribes to session-state events.
func (c *Client) Watch() *Watcher {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, watcherBuffer)
	id := c.nextID
	c.nextID++
	c.watchers[id] = ch

	if c.resolved {
		state := StateAnonymous
		if c.session != nil {
			state = StateAuthenticated
		}
		push(ch, state)
	}

	return &Watcher{client: c, id: id, ch: ch}
}

// States yields session-state events until Close.
func (w *Watcher) States() <-chan State {
	return w.ch
}

// Close unsubscribes the watcher.
func (w *Watcher) Close() {
	w.once.Do(func() {
		w.client.mu.Lock()
		delete(w.client.watchers, w.id)
		w.client.mu.Unlock()
		close(w.ch)
	})
}

// push delivers without blocking; a subscriber that stopped reading sixteen
// events ago forfeits further ones rather than stalling the client.
func push(ch chan State, state State) {
	select {
	case ch <- state:
	default:
	}
}

// Gate tracks the latest observed session state for access decisions. It
// starts at StateUnknown and follows the watcher from there.
type Gate struct {
	mu    sync.Mutex
	state State

	watcher *Watcher
	done    chan struct{}
}

// NewGate consumes a watcher and keeps the latest state.
func NewGate(watcher *Watcher) *Gate {
	g := &Gate{
		state:   StateUnknown,
		watcher: watcher,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(g.done)
		for state := range watcher.States() {
			g.mu.Lock()
			g.state = state
			g.mu.Unlock()
		}
	}()

	return g
}

// State returns the latest observed session state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Allowed reports whether a protected flow may proceed. StateUnknown answers
// false without implying a redirect; check State for the distinction.
func (g *Gate) Allowed() bool {
	return g.State() == StateAuthenticated
}

// Close stops following the watcher.
func (g *Gate) Close() {
	g.watcher.Close()
	<-g.done
}
