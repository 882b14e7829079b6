package schema

import (
	"slices"
	"testing"
)

func TestDetectTableName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"", ""},
		{"No tables mentioned here.", ""},
		{"Use table sensors for the readings.", "sensors"},
		{"Read TABLE Flight_Log2 first", "Flight_Log2"},
		{"The timetable gets updated", ""},
		{"table alpha and table beta", "alpha"},
	}
	for _, tt := range tests {
		if got := DetectTableName(tt.text); got != tt.want {
			t.Errorf("DetectTableName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSnapshotMentioned(t *testing.T) {
	s := Snapshot{
		"Sensors": {"id": "integer"},
		"alarms":  {"level": "text"},
		"users":   {"name": "text"},
	}
	got := s.Mentioned("Sensor readings above threshold raise ALARMS. The sensors table is large.")
	if !slices.Equal(got, []string{"Sensors", "alarms"}) {
		t.Errorf("Mentioned() = %v", got)
	}
	if got := (Snapshot{}).Mentioned("anything"); got != nil {
		t.Errorf("empty snapshot Mentioned() = %v", got)
	}
}
