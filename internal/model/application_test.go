package model

import "testing"

func TestApplication_Reviewable(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ApplicationStatusPending, true},
		{ApplicationStatusUnderReview, true},
		{ApplicationStatusApproved, false},
		{ApplicationStatusRejected, false},
		{ApplicationStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			a := Application{Status: tt.status}
			if got := a.Reviewable(); got != tt.want {
				t.Errorf("Reviewable() with status %q = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestApplication_CancellableBy(t *testing.T) {
	a := Application{ExhibitorID: 7, Status: ApplicationStatusPending}

	if !a.CancellableBy(7) {
		t.Error("applicant should be able to cancel a pending application")
	}
	if a.CancellableBy(8) {
		t.Error("another user must not cancel someone else's application")
	}

	a.Status = ApplicationStatusApproved
	if a.CancellableBy(7) {
		t.Error("decided applications are not cancellable")
	}
}

func TestApplication_Editable(t *testing.T) {
	a := Application{Status: ApplicationStatusPending}
	if !a.Editable() {
		t.Error("pending application should be editable")
	}
	a.Status = ApplicationStatusUnderReview
	if a.Editable() {
		t.Error("review locks edits")
	}
}

func TestValidDecision(t *testing.T) {
	tests := []struct {
		decision string
		want     bool
	}{
		{ApplicationStatusApproved, true},
		{ApplicationStatusRejected, true},
		{ApplicationStatusPending, false},
		{ApplicationStatusCancelled, false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := ValidDecision(tt.decision); got != tt.want {
			t.Errorf("ValidDecision(%q) = %v, want %v", tt.decision, got, tt.want)
		}
	}
}
