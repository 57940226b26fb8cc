package vtcore

// NotificationPayload carries a desktop notification request, sourced from
// any of the OSC forms that request host-side notification delivery: the
// Kitty Graphics-adjacent desktop notification protocol (OSC 99), iTerm2's
// OSC 9 notifications, and the growl/ConEmu-derived plain-text OSC 777
// form. Fields not supplied by the originating OSC form are left at their
// zero value.
type NotificationPayload struct {
	// ID identifies this notification for later reference (e.g. a
	// subsequent "close" or action report); corresponds to OSC 99's "i=".
	ID string
	// Done marks the final chunk of a (possibly multi-part) notification.
	Done bool
	// PayloadType distinguishes the notification's metadata/body role:
	// "title", "body", or "?" for a capability query.
	PayloadType string
	// Encoding is the OSC 99 "e=" field ("" for plain UTF-8 text, "1" for
	// base64-encoded payload data).
	Encoding string
	// Actions lists button/action identifiers the notification should
	// offer (OSC 99 "a=").
	Actions []string
	// TrackClose requests a close-report round trip (OSC 99 "c=1").
	TrackClose bool
	// Timeout is a requested auto-dismiss delay in milliseconds; 0 means
	// "no timeout specified."
	Timeout int
	// AppName is the originating application's display name.
	AppName string
	// Type is a freeform notification category/urgency class.
	Type string
	// IconName names a themed icon to display alongside the notification.
	IconName string
	// IconCacheID lets the host cache icon bytes across notifications that
	// reuse the same icon.
	IconCacheID string
	// Sound names a themed alert sound, or "" for the host default.
	Sound string
	// Urgency is a freedesktop-style urgency level (0=low, 1=normal,
	// 2=critical); 0 is also the unset default.
	Urgency int
	// Occasion restricts when the notification should surface (e.g.
	// "always" vs. "unfocused"); OSC 777-derived terminals vary here.
	Occasion string
	// Data is the notification payload: plain text, or base64-decoded
	// bytes when Encoding == "1".
	Data []byte
}

// NotificationProvider delivers a desktop notification request to the host
// environment. Notify's return value is written back to the PTY verbatim
// when PayloadType is "?" (a capability/state query); for all other
// payload types the return value is ignored.
type NotificationProvider interface {
	Notify(payload *NotificationPayload) string
}

// NoopNotification discards all notification requests and answers queries
// with an empty string.
type NoopNotification struct{}

func (NoopNotification) Notify(*NotificationPayload) string { return "" }

var _ NotificationProvider = NoopNotification{}

// NotificationProvider returns the terminal's current notification sink.
func (t *Terminal) NotificationProvider() NotificationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notificationProvider
}

// SetNotificationProvider replaces the terminal's notification sink at
// runtime. Passing nil disables notification delivery (DesktopNotification
// becomes a no-op) without panicking.
func (t *Terminal) SetNotificationProvider(p NotificationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationProvider = p
}

// DesktopNotification delivers payload to the configured NotificationProvider
// (OSC 99/9/777 dispatch point). If PayloadType is "?", the provider's
// response is written back to the host via the response queue/provider.
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, t.desktopNotificationInternal)
		return
	}
	t.desktopNotificationInternal(payload)
}

func (t *Terminal) desktopNotificationInternal(payload *NotificationPayload) {
	t.mu.RLock()
	provider := t.notificationProvider
	t.mu.RUnlock()

	if provider == nil {
		return
	}
	response := provider.Notify(payload)
	if payload != nil && payload.PayloadType == "?" && response != "" {
		t.writeResponseString(response)
	}
}
