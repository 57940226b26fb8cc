package vtcore

import "sync"

// EventKind identifies the category of a terminal Event.
type EventKind int

const (
	EventScroll EventKind = iota
	EventModeChanged
	EventBell
	EventTitleChanged
	EventIconNameChanged
	EventZoneOpened
	EventZoneClosed
	EventZoneScrolledOut
	EventImageAdded
	EventImageRemoved
	EventImageAnimationFrame
	EventCursorMoved
	EventScreenSwitched
	EventSynchronizedUpdateBegin
	EventSynchronizedUpdateEnd
	EventResize
	EventClipboardWrite

	// Remaining kinds from spec §4.I's exhaustive event-kind list not
	// covered by the names above (size_changed is EventResize,
	// graphics_added/graphics_dropped are EventImageAdded/below,
	// hyperlink_added/dirty_region are new, zone lifecycle is above).
	EventGraphicsDropped
	EventHyperlinkAdded
	EventDirtyRegion
	EventCwdChanged
	EventTriggerMatched
	EventUserVarChanged
	EventProgressBarChanged
	EventBadgeChanged
	EventShellIntegration
	EventEnvironmentChanged
	EventRemoteHostTransition
	EventSubShellDetected
	EventFileTransferStarted
	EventFileTransferProgress
	EventFileTransferCompleted
	EventFileTransferFailed
	EventUploadRequested
)

func (k EventKind) String() string {
	switch k {
	case EventScroll:
		return "scroll"
	case EventModeChanged:
		return "mode_changed"
	case EventBell:
		return "bell"
	case EventTitleChanged:
		return "title_changed"
	case EventIconNameChanged:
		return "icon_name_changed"
	case EventZoneOpened:
		return "zone_opened"
	case EventZoneClosed:
		return "zone_closed"
	case EventZoneScrolledOut:
		return "zone_scrolled_out"
	case EventImageAdded:
		return "image_added"
	case EventImageRemoved:
		return "image_removed"
	case EventImageAnimationFrame:
		return "image_animation_frame"
	case EventCursorMoved:
		return "cursor_moved"
	case EventScreenSwitched:
		return "screen_switched"
	case EventSynchronizedUpdateBegin:
		return "synchronized_update_begin"
	case EventSynchronizedUpdateEnd:
		return "synchronized_update_end"
	case EventResize:
		return "resize"
	case EventClipboardWrite:
		return "clipboard_write"
	case EventGraphicsDropped:
		return "graphics_dropped"
	case EventHyperlinkAdded:
		return "hyperlink_added"
	case EventDirtyRegion:
		return "dirty_region"
	case EventCwdChanged:
		return "cwd_changed"
	case EventTriggerMatched:
		return "trigger_matched"
	case EventUserVarChanged:
		return "user_var_changed"
	case EventProgressBarChanged:
		return "progress_bar_changed"
	case EventBadgeChanged:
		return "badge_changed"
	case EventShellIntegration:
		return "shell_integration"
	case EventEnvironmentChanged:
		return "environment_changed"
	case EventRemoteHostTransition:
		return "remote_host_transition"
	case EventSubShellDetected:
		return "sub_shell_detected"
	case EventFileTransferStarted:
		return "file_transfer_started"
	case EventFileTransferProgress:
		return "file_transfer_progress"
	case EventFileTransferCompleted:
		return "file_transfer_completed"
	case EventFileTransferFailed:
		return "file_transfer_failed"
	case EventUploadRequested:
		return "upload_requested"
	default:
		return "unknown"
	}
}

// Event is a single notification delivered to subscribers. Payload carries
// kind-specific data (e.g. a Zone for EventZoneOpened, a string title for
// EventTitleChanged); subscribers type-assert based on Kind.
type Event struct {
	Kind    EventKind
	Payload interface{}
}

type subscription struct {
	id    uint64
	kinds map[EventKind]bool
	fn    func(Event)
}

// EventBus fans out terminal state-change notifications to subscribers.
// Unlike the teacher's ObserverProvider (a single sink for dirty-region
// notification), EventBus supports many independent subscribers each
// filtering on a subset of EventKinds, so e.g. a status-bar integration can
// watch only EventTitleChanged/EventZoneOpened without being woken on every
// scroll.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[uint64]*subscription)}
}

// Subscribe registers fn to be called for every event whose Kind appears in
// kinds. A nil or empty kinds slice subscribes to all kinds. Returns a
// subscription id usable with Unsubscribe.
func (b *EventBus) Subscribe(kinds []EventKind, fn func(Event)) uint64 {
	if fn == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	var set map[EventKind]bool
	if len(kinds) > 0 {
		set = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			set[k] = true
		}
	}
	b.subs[id] = &subscription{id: id, kinds: set, fn: fn}
	return id
}

// Unsubscribe removes a subscription. Returns false if id is unknown.
func (b *EventBus) Unsubscribe(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	return true
}

// Publish delivers ev to every subscriber interested in its Kind.
// Subscriber callbacks run synchronously on the calling goroutine; the
// order among subscribers is not defined (subscriptions are kept in a map).
// A slow or blocking subscriber stalls the writer, so
// subscribers are expected to enqueue and return rather than do real work
// inline.
func (b *EventBus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.kinds != nil && !sub.kinds[ev.Kind] {
			continue
		}
		sub.fn(ev)
	}
}

// publishEvent is a nil-safe helper for call sites that hold only a
// *EventBus that may not have been configured (headless construction paths
// that skip WithEventBus).
func publishEvent(b *EventBus, kind EventKind, payload interface{}) {
	if b == nil {
		return
	}
	b.Publish(Event{Kind: kind, Payload: payload})
}
