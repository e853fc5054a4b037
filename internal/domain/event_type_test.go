package domain

import "testing"

func TestParseVoyageEventType(t *testing.T) {
	tests := []struct {
		input   string
		want    VoyageEventType
		wantErr bool
	}{
		{"Depart", EventDepart, false},
		{"depart", EventDepart, false},
		{" ARRIVE ", EventArrive, false},
		{"none", EventNone, false},
		{"Sailed", EventNone, true},
		{"", EventNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVoyageEventType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVoyageEventType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVoyageEventType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestVoyageEventType_String(t *testing.T) {
	if got := EventArrive.String(); got != "Arrive" {
		t.Errorf("EventArrive.String() = %q, want %q", got, "Arrive")
	}
	if got := VoyageEventType(9).String(); got != "VoyageEventType(9)" {
		t.Errorf("VoyageEventType(9).String() = %q", got)
	}
}

func TestVessel_ActiveRegistration(t *testing.T) {
	v := Vessel{RegistrationHistory: []RegistrationHistory{
		{ID: 1, Name: "Old", IsActive: false},
		{ID: 2, Name: "Current", IsActive: true},
	}}

	got := v.ActiveRegistration()
	if got == nil || got.Name != "Current" {
		t.Fatalf("ActiveRegistration() = %+v, want Current", got)
	}

	empty := Vessel{}
	if empty.ActiveRegistration() != nil {
		t.Error("ActiveRegistration() on empty history should be nil")
	}
}
