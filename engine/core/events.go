package core

import "sync"

// EventName identifies a lifecycle signal on the bus.
type EventName string

const (
	// Published by a scene node when it is disposed.
	/* Event usage:
	 * uint32 id = event.TargetID;
	 */
	EVENT_OBJECT_DISPOSE EventName = "objectDispose"

	// Published by a geometry when it is disposed.
	/* Event usage:
	 * uint32 id = event.TargetID;
	 * *resources.Geometry geometry = event.Target;
	 */
	EVENT_GEOMETRY_DISPOSE EventName = "geometryDispose"

	// Published by a material when it is disposed.
	/* Event usage:
	 * uint32 id = event.TargetID;
	 */
	EVENT_MATERIAL_DISPOSE EventName = "materialDispose"

	// Published by a texture when it is disposed.
	/* Event usage:
	 * uint32 id = event.TargetID;
	 */
	EVENT_TEXTURE_DISPOSE EventName = "textureDispose"

	// Published by a vertex attribute when it is disposed.
	/* Event usage:
	 * uint32 id = event.TargetID;
	 */
	EVENT_ATTRIBUTE_DISPOSE EventName = "attributeDispose"

	// Published once per shared source a texture stops holding.
	/* Event usage:
	 * *resources.Source source = event.Target;
	 * string path = event.UserData;
	 */
	EVENT_SOURCE_RELEASE EventName = "sourceRelease"

	// Published by a render target when it is disposed.
	/* Event usage:
	 * uint32 id = event.TargetID;
	 */
	EVENT_RENDER_TARGET_DISPOSE EventName = "renderTargetDispose"
)

// Event is the payload handed to every listener. Target carries the raw
// identity of the originating object and must not be retained.
type Event struct {
	Name     EventName
	TargetID uint32
	Target   interface{}
	UserData interface{}
}

type EventCallback func(event *Event)

type registeredEvent struct {
	listener interface{}
	callback EventCallback
}

// EventBus is a synchronous publish/subscribe channel keyed by event name.
// It is created explicitly and shared by everything that needs lifecycle
// notifications; there is no process-wide instance.
type EventBus struct {
	mutex      sync.RWMutex
	registered map[EventName][]*registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[EventName][]*registeredEvent),
	}
}

/**
 * @brief Register to listen for events with the provided name. A listener can
 * only be registered once per name; duplicates return false.
 * @param name The event name to listen for.
 * @param listener The owner identity of the registration. Must be comparable.
 * @param callback Invoked when the event is dispatched.
 * @returns true if the listener was registered.
 */
func (eb *EventBus) AddEventListener(name EventName, listener interface{}, callback EventCallback) bool {
	if callback == nil {
		return false
	}
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for _, e := range eb.registered[name] {
		if e.listener == listener {
			LogWarn("listener already registered for event `%s`", name)
			return false
		}
	}
	eb.registered[name] = append(eb.registered[name], &registeredEvent{
		listener: listener,
		callback: callback,
	})
	return true
}

/**
 * @brief Unregister the listener for the given event name.
 * @returns true if a registration was found and removed.
 */
func (eb *EventBus) RemoveEventListener(name EventName, listener interface{}) bool {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	events := eb.registered[name]
	for i, e := range events {
		if e.listener == listener {
			// keep registration order for the remaining listeners
			eb.registered[name] = append(events[:i:i], events[i+1:]...)
			if len(eb.registered[name]) == 0 {
				delete(eb.registered, name)
			}
			return true
		}
	}
	return false
}

func (eb *EventBus) HasEventListener(name EventName, listener interface{}) bool {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, e := range eb.registered[name] {
		if e.listener == listener {
			return true
		}
	}
	return false
}

func (eb *EventBus) ListenerCount(name EventName) int {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.registered[name])
}

/**
 * @brief Dispatches the event to every listener registered for its name,
 * synchronously and in registration order, on the calling goroutine.
 * The listener list is captured under the bus lock so callbacks may
 * register, unregister or dispatch without deadlocking the bus.
 */
func (eb *EventBus) Dispatch(event *Event) {
	if event == nil {
		return
	}
	eb.mutex.RLock()
	events := eb.registered[event.Name]
	snapshot := make([]*registeredEvent, len(events))
	copy(snapshot, events)
	eb.mutex.RUnlock()

	for _, e := range snapshot {
		e.callback(event)
	}
}

// Shutdown drops every registration.
func (eb *EventBus) Shutdown() error {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	eb.registered = make(map[EventName][]*registeredEvent)
	return nil
}
