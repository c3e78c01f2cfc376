package core

import "sync"

type EventContext struct {
	// Path of the asset file the event refers to, if any.
	Path string
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// A model file under one of the search paths was created or modified.
	/* Context usage:
	 * path = context.Path
	 */
	EVENT_CODE_ASSET_MODIFIED SystemEventCode = 0x02

	// A model file under one of the search paths was removed.
	/* Context usage:
	 * path = context.Path
	 */
	EVENT_CODE_ASSET_REMOVED SystemEventCode = 0x03

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventCallback func(code SystemEventCode, context EventContext)

type eventSystemState struct {
	mu        sync.RWMutex
	listeners map[SystemEventCode][]EventCallback
}

var onceEvents sync.Once
var eventsState *eventSystemState

func EventSystemInitialize() error {
	onceEvents.Do(func() {
		eventsState = &eventSystemState{
			listeners: make(map[SystemEventCode][]EventCallback),
		}
	})
	return nil
}

// EventRegister subscribes the callback to the given code. Callbacks are
// invoked synchronously on the goroutine that fires the event.
func EventRegister(code SystemEventCode, callback EventCallback) {
	eventsState.mu.Lock()
	eventsState.listeners[code] = append(eventsState.listeners[code], callback)
	eventsState.mu.Unlock()
}

func EventFire(code SystemEventCode, context EventContext) {
	eventsState.mu.RLock()
	callbacks := eventsState.listeners[code]
	eventsState.mu.RUnlock()

	for _, cb := range callbacks {
		cb(code, context)
	}
}
