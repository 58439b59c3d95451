package model

import (
	"testing"
	"time"
)

func TestExpo_AcceptingApplications(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ExpoStatusDraft, true},
		{ExpoStatusPublished, true},
		{ExpoStatusActive, true},
		{ExpoStatusCompleted, false},
		{ExpoStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			e := Expo{Status: tt.status}
			if got := e.AcceptingApplications(); got != tt.want {
				t.Errorf("AcceptingApplications() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpo_OpenForRegistration(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{ExpoStatusDraft, false},
		{ExpoStatusPublished, true},
		{ExpoStatusActive, true},
		{ExpoStatusCompleted, false},
		{ExpoStatusCancelled, false},
	}
	for _, tt := range tests {
		e := Expo{Status: tt.status}
		if got := e.OpenForRegistration(); got != tt.want {
			t.Errorf("OpenForRegistration() with %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestExpo_TogglePublish(t *testing.T) {
	e := Expo{Status: ExpoStatusDraft}
	if got := e.TogglePublish(); got != ExpoStatusPublished {
		t.Errorf("draft should publish, got %q", got)
	}
	e.Status = ExpoStatusPublished
	if got := e.TogglePublish(); got != ExpoStatusDraft {
		t.Errorf("published should unpublish back to draft, got %q", got)
	}
	e.Status = ExpoStatusCancelled
	if got := e.TogglePublish(); got != ExpoStatusPublished {
		t.Errorf("non-published statuses should publish, got %q", got)
	}
}

func TestValidSessionWindow(t *testing.T) {
	expo := Expo{
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 5, 23, 59, 0, 0, time.UTC),
	}
	day := func(d, h int) time.Time {
		return time.Date(2026, 9, d, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		starts time.Time
		ends   time.Time
		want   bool
	}{
		{"inside the expo", day(2, 10), day(2, 12), true},
		{"ends before it starts", day(2, 12), day(2, 10), false},
		{"zero length", day(2, 10), day(2, 10), false},
		{"starts before the expo", day(1, 10).AddDate(0, 0, -2), day(2, 12), false},
		{"ends after the expo", day(5, 10), day(6, 12), false},
		{"exactly the expo window", expo.StartDate, expo.EndDate, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSessionWindow(tt.starts, tt.ends, &expo); got != tt.want {
				t.Errorf("ValidSessionWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}
