package model

import "testing"

func TestDerivedArea(t *testing.T) {
	if got := DerivedArea(3, 4); got != 12 {
		t.Errorf("DerivedArea(3,4) = %v, want 12", got)
	}
	if got := DerivedArea(2.5, 2); got != 5 {
		t.Errorf("DerivedArea(2.5,2) = %v, want 5", got)
	}
}

func TestBooth_Reservable(t *testing.T) {
	tests := []struct {
		name  string
		booth Booth
		want  bool
	}{
		{"active available", Booth{IsActive: true, Status: BoothStatusAvailable}, true},
		{"inactive available", Booth{IsActive: false, Status: BoothStatusAvailable}, false},
		{"already reserved", Booth{IsActive: true, Status: BoothStatusReserved}, false},
		{"under maintenance", Booth{IsActive: true, Status: BoothStatusMaintenance}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booth.Reservable(); got != tt.want {
				t.Errorf("Reservable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBooth_Deletable(t *testing.T) {
	for status, want := range map[string]bool{
		BoothStatusAvailable:   true,
		BoothStatusMaintenance: true,
		BoothStatusReserved:    false,
		BoothStatusOccupied:    false,
	} {
		b := Booth{Status: status}
		if got := b.Deletable(); got != want {
			t.Errorf("Deletable() with %q = %v, want %v", status, got, want)
		}
	}
}

func TestValidBoothCategory(t *testing.T) {
	for _, c := range []string{BoothCategoryBasic, BoothCategoryStandard, BoothCategoryPremium, BoothCategoryCorner, BoothCategoryIsland} {
		if !ValidBoothCategory(c) {
			t.Errorf("ValidBoothCategory(%q) = false, want true", c)
		}
	}
	if ValidBoothCategory("penthouse") {
		t.Error("unknown category accepted")
	}
}
