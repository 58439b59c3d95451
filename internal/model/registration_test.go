package model

import "testing"

func TestRegistration_Lifecycle(t *testing.T) {
	tests := []struct {
		status       string
		cancellable  bool
		checkIn      bool
		feedbackable bool
	}{
		{RegistrationStatusRegistered, true, true, false},
		{RegistrationStatusConfirmed, true, true, false},
		{RegistrationStatusCancelled, true, false, false},
		{RegistrationStatusAttended, false, true, true},
		{RegistrationStatusNoShow, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := Registration{Status: tt.status}
			if got := r.Cancellable(); got != tt.cancellable {
				t.Errorf("Cancellable() = %v, want %v", got, tt.cancellable)
			}
			if got := r.CheckInAllowed(); got != tt.checkIn {
				t.Errorf("CheckInAllowed() = %v, want %v", got, tt.checkIn)
			}
			if got := r.FeedbackAllowed(); got != tt.feedbackable {
				t.Errorf("FeedbackAllowed() = %v, want %v", got, tt.feedbackable)
			}
		})
	}
}

func TestValidRating(t *testing.T) {
	for rating, want := range map[uint8]bool{0: false, 1: true, 3: true, 5: true, 6: false} {
		if got := ValidRating(rating); got != want {
			t.Errorf("ValidRating(%d) = %v, want %v", rating, got, want)
		}
	}
}

func TestCountsTowardCapacity(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{RegistrationStatusRegistered, true},
		{RegistrationStatusConfirmed, true},
		{RegistrationStatusCancelled, false},
		{RegistrationStatusAttended, false},
		{RegistrationStatusNoShow, false},
	}
	for _, tt := range tests {
		if got := CountsTowardCapacity(tt.status); got != tt.want {
			t.Errorf("CountsTowardCapacity(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSessionHasCapacity(t *testing.T) {
	cap10 := uint32(10)
	cap0 := uint32(0)

	if !SessionHasCapacity(100, nil) {
		t.Error("no cap means always room")
	}
	if !SessionHasCapacity(9, &cap10) {
		t.Error("one seat left should fit")
	}
	if SessionHasCapacity(10, &cap10) {
		t.Error("full session must not fit one more")
	}
	if SessionHasCapacity(0, &cap0) {
		t.Error("zero cap never fits")
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []string{PaymentMethodCard, PaymentMethodPaypal, PaymentMethodTransfer, PaymentMethodCash, PaymentMethodFree} {
		if !ValidPaymentMethod(m) {
			t.Errorf("ValidPaymentMethod(%q) = false, want true", m)
		}
	}
	if ValidPaymentMethod("bitcoin") {
		t.Error("unknown method accepted")
	}
}
