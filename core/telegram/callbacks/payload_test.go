package callbacks

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		payload string
	}{
		{"NAV|BACK", "NAV", "BACK"},
		{"\fNAV|CANCEL", "NAV", "CANCEL"},
		{"\\fVAC|550e8400-e29b-41d4-a716-446655440000", "VAC", "550e8400-e29b-41d4-a716-446655440000"},
		{"AD|REJ_REASON|id|NO_EXP", "AD", "REJ_REASON|id|NO_EXP"},
		{"DONE", "DONE", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, payload := Parse(tt.in)
		if name != tt.name || payload != tt.payload {
			t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", tt.in, name, payload, tt.name, tt.payload)
		}
	}
}
