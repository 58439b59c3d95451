package handler

import "testing"

func TestValidateDecision(t *testing.T) {
	boothID := uint64(7)
	tests := []struct {
		name string
		req  decisionReq
		ok   bool
	}{
		{"approve", decisionReq{Decision: "approved"}, true},
		{"reject", decisionReq{Decision: "rejected"}, true},
		{"approve with booth", decisionReq{Decision: "approved", AssignedBoothID: &boothID}, true},
		{"unknown decision", decisionReq{Decision: "maybe"}, false},
		{"pending is not a decision", decisionReq{Decision: "pending"}, false},
		{"booth on reject", decisionReq{Decision: "rejected", AssignedBoothID: &boothID}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := validateDecision(tt.req)
			if ok != tt.ok {
				t.Fatalf("validateDecision(%+v) = %v, want %v", tt.req, ok, tt.ok)
			}
			if !ok && msg == "" {
				t.Error("rejection must carry a message")
			}
		})
	}
}
