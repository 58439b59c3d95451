package queue

import "testing"

func TestNotificationFromEvent(t *testing.T) {
	ev := NotificationEvent{
		Event:    EventApplicationDecided,
		UserID:   42,
		SenderID: 7,
		ExpoID:   3,
		Title:    "Application approved",
		Body:     "See you there",
	}
	n := notificationFromEvent(ev)
	if n.UserID != 42 || n.Event != EventApplicationDecided || n.Title != "Application approved" {
		t.Errorf("unexpected notification: %+v", n)
	}
	if n.SenderID == nil || *n.SenderID != 7 {
		t.Errorf("sender = %v, want 7", n.SenderID)
	}
	if n.ExpoID == nil || *n.ExpoID != 3 {
		t.Errorf("expo = %v, want 3", n.ExpoID)
	}
}

func TestNotificationFromEvent_SystemSender(t *testing.T) {
	n := notificationFromEvent(NotificationEvent{Event: EventRegistrationCreated, UserID: 9})
	if n.SenderID != nil {
		t.Errorf("sender = %v, want nil for system events", n.SenderID)
	}
	if n.ExpoID != nil {
		t.Errorf("expo = %v, want nil when the event has no expo", n.ExpoID)
	}
}
