package core

import (
	"sync"

	"github.com/spaghettifunk/ember/engine/containers"
)

// EventContext carries a fired event to its listeners. Data holds the
// code-specific payload (KeyEvent, MouseEvent, SystemEvent, ...).
type EventContext struct {
	Type EventCode
	Data interface{}
}

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Keyboard key pressed/released. Data is *KeyEvent.
	EVENT_CODE_KEY_PRESSED  EventCode = 0x02
	EVENT_CODE_KEY_RELEASED EventCode = 0x03

	// Mouse button pressed/released. Data is *MouseEvent.
	EVENT_CODE_BUTTON_PRESSED  EventCode = 0x04
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05

	// Mouse moved/scrolled. Data is *MouseEvent.
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07

	// Resized/resolution changed from the OS. Data is *SystemEvent.
	EVENT_CODE_RESIZED EventCode = 0x08

	MAX_EVENT_CODE EventCode = 0xFF
)

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   uint16
	PosY   uint16
	Scroll int8
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type FnOnEvent func(context EventContext)

const maxDeferredEvents = 512

type eventSystemState struct {
	registered map[EventCode][]FnOnEvent

	// Events posted from outside the frame thread wait here until
	// ProcessEvents drains them at the top of the next tick.
	mu       sync.Mutex
	deferred *containers.RingQueue[EventContext]
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[EventCode][]FnOnEvent),
			deferred:   containers.NewRingQueue[EventContext](maxDeferredEvents),
		}
	})
	return true
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	for code := range eventState.registered {
		eventState.registered[code] = nil
	}
	return nil
}

// EventRegister adds a listener for the given code. Listeners are invoked in
// registration order.
func EventRegister(code EventCode, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// EventFire dispatches synchronously to every listener of the context's code,
// in registration order. Must only be called from the frame thread; dispatch
// is non-reentrant by the single-threaded tick discipline.
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	listeners := eventState.registered[context.Type]
	if len(listeners) == 0 {
		return false
	}
	for _, listener := range listeners {
		listener(context)
	}
	return true
}

// EventPost queues an event from an arbitrary goroutine. It is delivered by
// ProcessEvents on the frame thread. Returns false when the queue is full, in
// which case the event is dropped and logged.
func EventPost(context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mu.Lock()
	err := eventState.deferred.Enqueue(context)
	eventState.mu.Unlock()
	if err != nil {
		LogWarn("event queue full, dropping event with code %d", context.Type)
		return false
	}
	return true
}

// ProcessEvents drains all posted events. Called once per frame before any
// other tick logic so that cross-thread sources are observed synchronously.
func ProcessEvents() {
	if eventState == nil {
		return
	}
	for {
		eventState.mu.Lock()
		context, err := eventState.deferred.Dequeue()
		eventState.mu.Unlock()
		if err != nil {
			return
		}
		EventFire(context)
	}
}
