package gateway

import (
	"log"
	"sync"

	"github.com/ClancyDennis/claude-commander-sub000/internal/event"
)

// Handler receives normalized events for one channel. Handlers run on the
// dispatch loop: they must not block and must not call Teardown from inside
// themselves (teardown waits on the loop).
type Handler func(event.Event)

type subEntry struct {
	channel string
	id      int64
}

// Manager registers per-channel handlers. The handler table is owned by the
// dispatch loop; registration and removal travel through the ops channel,
// so a Subscribe issued while events are flowing is genuinely in flight
// until the loop admits it.
type Manager struct {
	ops       chan func()
	closed    chan struct{}
	closeOnce sync.Once

	// Loop-owned; touched only from ops and Dispatch.
	handlers map[string]map[int64]Handler
	nextID   int64
}

func NewManager() *Manager {
	return &Manager{
		ops:      make(chan func(), 64),
		closed:   make(chan struct{}),
		handlers: make(map[string]map[int64]Handler),
	}
}

// Subscription is the composite teardown for one view's handler set.
type Subscription struct {
	mgr     *Manager
	entries []subEntry
	ready   chan struct{}
	once    sync.Once
}

// Subscribe registers one handler per channel and returns a single
// composite teardown covering all of them.
func (m *Manager) Subscribe(handlers map[string]Handler) *Subscription {
	sub := &Subscription{mgr: m, ready: make(chan struct{})}
	m.enqueue(func() {
		for ch, h := range handlers {
			m.nextID++
			id := m.nextID
			if m.handlers[ch] == nil {
				m.handlers[ch] = make(map[int64]Handler)
			}
			m.handlers[ch][id] = h
			sub.entries = append(sub.entries, subEntry{channel: ch, id: id})
		}
		close(sub.ready)
	})
	return sub
}

// Teardown unregisters every handler exactly once. If registration is still
// in flight it waits for the loop to admit it first, so nothing is leaked.
// Calling Teardown again is a no-op.
func (s *Subscription) Teardown() {
	s.once.Do(func() {
		select {
		case <-s.ready:
		case <-s.mgr.closed:
			return
		}
		done := make(chan struct{})
		s.mgr.enqueue(func() {
			for _, e := range s.entries {
				delete(s.mgr.handlers[e.channel], e.id)
			}
			close(done)
		})
		select {
		case <-done:
		case <-s.mgr.closed:
		}
	})
}

func (m *Manager) enqueue(f func()) {
	select {
	case m.ops <- f:
	case <-m.closed:
	}
}

// Ops exposes pending registration work to the dispatch loop.
func (m *Manager) Ops() <-chan func() {
	return m.ops
}

// Dispatch fans one event out to the channel's handlers. Loop-only. A
// panicking handler is logged and never blocks delivery to the rest.
func (m *Manager) Dispatch(channel string, ev event.Event) {
	for _, h := range m.handlers[channel] {
		safeCall(channel, h, ev)
	}
}

func safeCall(channel string, h Handler, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("handler panic on %s: %v", channel, r)
		}
	}()
	h(ev)
}

// Close releases anything blocked on the manager after the loop exits.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.closed) })
}

// ActiveHandlers counts registered handlers via the loop; test and
// debugging aid.
func (m *Manager) ActiveHandlers() int {
	res := make(chan int, 1)
	m.enqueue(func() {
		n := 0
		for _, hs := range m.handlers {
			n += len(hs)
		}
		res <- n
	})
	select {
	case n := <-res:
		return n
	case <-m.closed:
		return 0
	}
}
