package model

import "testing"

func TestReplyRecipient(t *testing.T) {
	parent := Message{SenderID: 1, RecipientID: 2}

	if got := ReplyRecipient(&parent, 1); got != 2 {
		t.Errorf("reply from original sender should address recipient, got %d", got)
	}
	if got := ReplyRecipient(&parent, 2); got != 1 {
		t.Errorf("reply from recipient should address original sender, got %d", got)
	}
}

func TestMessage_ParticipantOf(t *testing.T) {
	m := Message{SenderID: 1, RecipientID: 2}
	if !m.ParticipantOf(1) || !m.ParticipantOf(2) {
		t.Error("both ends of the message are participants")
	}
	if m.ParticipantOf(3) {
		t.Error("third parties are not participants")
	}
}

func TestMessage_MarkReadOnView(t *testing.T) {
	m := Message{SenderID: 1, RecipientID: 2, Status: MessageStatusDelivered}

	if m.MarkReadOnView(1) {
		t.Error("sender views must not mark the message read")
	}
	if !m.MarkReadOnView(2) {
		t.Error("recipient's first view should mark the message read")
	}

	m.Status = MessageStatusRead
	if m.MarkReadOnView(2) {
		t.Error("repeat views leave the status alone")
	}
}

func TestMessage_AppointmentActionable(t *testing.T) {
	m := Message{SenderID: 1, RecipientID: 2, MessageType: MessageTypeAppointmentRequest}

	if !m.AppointmentActionable(2) {
		t.Error("recipient decides appointment requests")
	}
	if m.AppointmentActionable(1) {
		t.Error("the requester cannot decide their own request")
	}

	m.MessageType = MessageTypeGeneral
	if m.AppointmentActionable(2) {
		t.Error("only appointment_request messages carry decisions")
	}
}

func TestCommunicationValidators(t *testing.T) {
	if !ValidMessageType(MessageTypeSupport) || ValidMessageType("spam") {
		t.Error("ValidMessageType mismatch")
	}
	if !ValidMessagePriority(MessagePriorityUrgent) || ValidMessagePriority("whenever") {
		t.Error("ValidMessagePriority mismatch")
	}
	if !ValidAppointmentStatus(AppointmentStatusAccepted) || ValidAppointmentStatus(AppointmentStatusPending) {
		t.Error("pending is not a settable appointment status")
	}
}
