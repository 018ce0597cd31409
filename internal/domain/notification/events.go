package notification

// NotificationRaisedEvent carries a notification over the event bus.
type NotificationRaisedEvent struct {
	Notification Notification
}

func (NotificationRaisedEvent) EventName() string { return "cart.notification" }
