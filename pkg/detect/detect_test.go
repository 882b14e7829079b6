package detect

import "testing"

func TestDetectSystemType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Profile
	}{
		{"empty", "", Generic},
		{"no match", "A plain description of nothing in particular.", Generic},
		{"autonomous vehicle", "The Autonomous Vehicle must stop at red lights.", Profile{"Autonomous Vehicle", "AV"}},
		{"self-driving", "A SELF-DRIVING shuttle.", Profile{"Autonomous Vehicle", "AV"}},
		{"energy beats smart home", "I need a smart home energy management system", Profile{"Energy Management System", "EMS"}},
		{"vehicle beats smart home", "A smart home that talks to an autonomous vehicle.", Profile{"Autonomous Vehicle", "AV"}},
		{"smart home", "Smart home lighting control.", Profile{"Smart Home System", "SHS"}},
		{"healthcare before medical", "Healthcare records for medical staff.", Profile{"Healthcare System", "HCS"}},
		{"security before data", "Security of stored data.", Profile{"Security System", "SEC"}},
		{"network before data", "Network data plane.", Profile{"Network System", "NET"}},
		{"substring", "Cloud robotics platform.", Profile{"Cloud System", "CLD"}},
		{"iot", "An IoT gateway.", Profile{"IoT System", "IOT"}},
		{"robot", "Warehouse robot arm.", Profile{"Robotic System", "ROB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectSystemType(tt.text); got != tt.want {
				t.Errorf("DetectSystemType(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDefaultRulesOrder(t *testing.T) {
	index := map[string]int{}
	for i, r := range DefaultRules {
		if _, dup := index[r.Keyword]; dup {
			t.Errorf("keyword %q listed twice", r.Keyword)
		}
		index[r.Keyword] = i
		if r.Profile.TypeName == "" || r.Profile.IDCode == "" {
			t.Errorf("rule %q has an incomplete profile", r.Keyword)
		}
	}
	if index["energy management"] > index["smart home"] {
		t.Error("energy management must precede smart home")
	}
	if index["autonomous vehicle"] != 0 {
		t.Error("autonomous vehicle must be the first rule")
	}
}

func TestMatchReportsKeyword(t *testing.T) {
	d := New(nil)
	p, kw := d.Match("Retail logistics hub")
	if p.IDCode != "RET" || kw != "retail" {
		t.Errorf("Match() = %+v, %q", p, kw)
	}
	p, kw = d.Match("nothing")
	if p != Generic || kw != "" {
		t.Errorf("Match(nothing) = %+v, %q", p, kw)
	}
}

func TestCustomRules(t *testing.T) {
	d := New([]Rule{
		{"Satellite", Profile{"Satellite System", "SAT"}},
		{"ground station", Profile{"Ground Segment", "GND"}},
	})

	if got := d.Detect("satellite link to a ground station"); got.IDCode != "SAT" {
		t.Errorf("Detect() = %+v, want SAT", got)
	}
	if got := d.Detect("autonomous vehicle"); got != Generic {
		t.Errorf("custom rules should replace the defaults, got %+v", got)
	}
	if len(d.Rules()) != 2 || d.Rules()[0].Keyword != "satellite" {
		t.Errorf("Rules() = %+v", d.Rules())
	}
}

func TestZeroDetectorUsesDefaults(t *testing.T) {
	var d Detector
	if got := d.Detect("banking app"); got.IDCode != "BNK" {
		t.Errorf("zero Detector.Detect() = %+v, want BNK", got)
	}
}
