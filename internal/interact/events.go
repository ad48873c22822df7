package interact

import (
	"sort"
	"sync"
)

type EventKind int

const (
	EventMove EventKind = iota
	EventUp
	EventLeave
)

func (k EventKind) String() string {
	switch k {
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	case EventLeave:
		return "leave"
	}
	return "unknown"
}

// PointerEvent is a pointer position in visual (screen) pixels.
type PointerEvent struct {
	X float64
	Y float64
}

type Handler func(PointerEvent)

// EventTarget is the broad listening scope (document level) that keeps an
// interaction alive after the pointer leaves the field's bounds. Listen
// returns the function that detaches the handler.
type EventTarget interface {
	Listen(kind EventKind, h Handler) (release func())
}

// Dispatcher is an in-process EventTarget for headless hosts and tests.
type Dispatcher struct {
	mu       sync.Mutex
	next     int
	handlers map[EventKind]map[int]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind]map[int]Handler)}
}

func (d *Dispatcher) Listen(kind EventKind, h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	id := d.next
	if d.handlers[kind] == nil {
		d.handlers[kind] = make(map[int]Handler)
	}
	d.handlers[kind][id] = h
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[kind], id)
	}
}

// Dispatch delivers ev synchronously to every handler registered for kind.
// Handlers may release themselves during delivery.
func (d *Dispatcher) Dispatch(kind EventKind, ev PointerEvent) {
	d.mu.Lock()
	hs := make([]Handler, 0, len(d.handlers[kind]))
	ids := make([]int, 0, len(d.handlers[kind]))
	for id := range d.handlers[kind] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		hs = append(hs, d.handlers[kind][id])
	}
	d.mu.Unlock()

	for _, h := range hs {
		h(ev)
	}
}

func (d *Dispatcher) Listeners(kind EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[kind])
}

// scope collects listener releases acquired for one interaction and releases
// them all exactly once.
type scope struct {
	releases []func()
}

func (s *scope) add(release func()) {
	s.releases = append(s.releases, release)
}

func (s *scope) release() {
	if s == nil {
		return
	}
	rs := s.releases
	s.releases = nil
	for i := len(rs) - 1; i >= 0; i-- {
		rs[i]()
	}
}
