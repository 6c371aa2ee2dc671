// Package input holds the contracts between the key state machine and the
// operating system backends that inject and observe keyboard events.
package input

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

// EventKind is the value written for a key event: release, press or repeat.
type EventKind int32

const (
	Release EventKind = 0
	Press   EventKind = 1
	Repeat  EventKind = 2
)

func (k EventKind) String() string {
	switch k {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return "unknown"
}

// Injector replays logical keys to the operating system.
type Injector interface {
	SimulateKeyDown(key keys.Code)
	SimulateKeyUp(key keys.Code)
	SimulateKeyRepeat(key keys.Code)
}

// KeyboardEvent is a key change observed on a keyboard device.
type KeyboardEvent struct {
	Keys        []keys.Code
	IsDown      bool
	Timestamp   time.Time
	DeviceID    int
	IsSimulated bool
}

// EventProvider delivers observed keyboard events to subscribers. Handlers
// run on the provider's goroutines and must not block.
type EventProvider interface {
	Subscribe(handler func(KeyboardEvent)) uuid.UUID
	Unsubscribe(id uuid.UUID)
}

// Subscribers is a ready-made EventProvider implementation that backends embed.
type Subscribers struct {
	mu       sync.RWMutex
	handlers map[uuid.UUID]func(KeyboardEvent)
}

func (s *Subscribers) Subscribe(handler func(KeyboardEvent)) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[uuid.UUID]func(KeyboardEvent))
	}
	id := uuid.New()
	s.handlers[id] = handler
	return id
}

func (s *Subscribers) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, id)
}

// Publish calls every subscribed handler with ev.
func (s *Subscribers) Publish(ev KeyboardEvent) {
	s.mu.RLock()
	handlers := make([]func(KeyboardEvent), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
