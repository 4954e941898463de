package enums

import "fmt"

// NotificationEvent is the internal event name listeners subscribe to on the notification socket.
type NotificationEvent string

const (
	EventNotification  NotificationEvent = "notification"
	EventNotifications NotificationEvent = "notifications"
	EventUserChannel   NotificationEvent = "user-channel"
	EventAdminChannel  NotificationEvent = "admin-channel"
	EventPong          NotificationEvent = "pong"
	EventConnected     NotificationEvent = "connected"
)

var validNotificationEvents = []NotificationEvent{
	EventNotification,
	EventNotifications,
	EventUserChannel,
	EventAdminChannel,
	EventPong,
	EventConnected,
}

// frameEvents maps server frame types onto internal event names.
var frameEvents = map[string]NotificationEvent{
	"notification:nouvelle":        EventNotification,
	"notification":                 EventNotification,
	"notifications-bulk":           EventNotifications,
	"notification:connected":       EventUserChannel,
	"notification:admin-connected": EventAdminChannel,
	"pong":                         EventPong,
}

func (e NotificationEvent) String() string {
	return string(e)
}

// IsValid checks whether the event is one the socket can emit.
func (e NotificationEvent) IsValid() bool {
	for _, candidate := range validNotificationEvents {
		if candidate == e {
			return true
		}
	}
	return false
}

// EventForFrame resolves a server frame type. ok is false for unknown types.
func EventForFrame(frameType string) (NotificationEvent, bool) {
	event, ok := frameEvents[frameType]
	return event, ok
}

// ParseNotificationEvent converts raw strings into NotificationEvent.
func ParseNotificationEvent(value string) (NotificationEvent, error) {
	for _, candidate := range validNotificationEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification event %q", value)
}
