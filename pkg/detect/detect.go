package detect

import "strings"

// Profile is the system type chosen for an input text.
type Profile struct {
	TypeName string `json:"type_name"`
	IDCode   string `json:"id_code"`
}

// Generic is returned when no keyword matches.
var Generic = Profile{TypeName: "Generic System", IDCode: "SYS"}

// Rule maps a lower-case keyword to the profile it selects.
type Rule struct {
	Keyword string
	Profile Profile
}

// DefaultRules is the built-in priority table. Earlier rules win, so
// "energy management" is listed ahead of "smart home" and the broad "data"
// and "network" terms sit near the end.
var DefaultRules = []Rule{
	{"autonomous vehicle", Profile{"Autonomous Vehicle", "AV"}},
	{"self-driving", Profile{"Autonomous Vehicle", "AV"}},
	{"energy management", Profile{"Energy Management System", "EMS"}},
	{"smart home", Profile{"Smart Home System", "SHS"}},
	{"healthcare", Profile{"Healthcare System", "HCS"}},
	{"medical", Profile{"Medical System", "MED"}},
	{"finance", Profile{"Financial System", "FIN"}},
	{"banking", Profile{"Banking System", "BNK"}},
	{"security", Profile{"Security System", "SEC"}},
	{"manufacturing", Profile{"Manufacturing System", "MFG"}},
	{"education", Profile{"Education System", "EDU"}},
	{"retail", Profile{"Retail System", "RET"}},
	{"transportation", Profile{"Transportation System", "TRN"}},
	{"logistics", Profile{"Logistics System", "LOG"}},
	{"communication", Profile{"Communication System", "COM"}},
	{"network", Profile{"Network System", "NET"}},
	{"data", Profile{"Data Management System", "DMS"}},
	{"cloud", Profile{"Cloud System", "CLD"}},
	{"iot", Profile{"IoT System", "IOT"}},
	{"robot", Profile{"Robotic System", "ROB"}},
}

// Detector resolves profiles against an ordered rule table.
// The zero value uses DefaultRules.
type Detector struct {
	rules []Rule
}

// New returns a Detector over rules, falling back to Generic. Keywords are
// lower-cased; a nil rules slice selects DefaultRules.
func New(rules []Rule) *Detector {
	if rules == nil {
		return &Detector{}
	}
	lowered := make([]Rule, len(rules))
	for i, r := range rules {
		lowered[i] = Rule{Keyword: strings.ToLower(r.Keyword), Profile: r.Profile}
	}
	return &Detector{rules: lowered}
}

// Rules returns a copy of the table the detector scans.
func (d *Detector) Rules() []Rule {
	return append([]Rule(nil), d.table()...)
}

// Detect returns the profile of the first rule whose keyword occurs in text,
// ignoring case. Detect never fails; empty or unmatched text yields Generic.
func (d *Detector) Detect(text string) Profile {
	p, _ := d.Match(text)
	return p
}

// Match is Detect that also reports the keyword that decided the result.
// The keyword is empty for the fallback profile.
func (d *Detector) Match(text string) (Profile, string) {
	lower := strings.ToLower(text)
	for _, r := range d.table() {
		if r.Keyword != "" && strings.Contains(lower, r.Keyword) {
			return r.Profile, r.Keyword
		}
	}
	return Generic, ""
}

func (d *Detector) table() []Rule {
	if d == nil || d.rules == nil {
		return DefaultRules
	}
	return d.rules
}

var defaultDetector = &Detector{}

// DetectSystemType runs the default detector.
func DetectSystemType(text string) Profile {
	return defaultDetector.Detect(text)
}
