package payment

import "testing"

func TestParsePayload(t *testing.T) {
	cases := []struct {
		in        string
		kind      string
		txID      int64
		contactID int64
		ok        bool
	}{
		{"sub:42", "sub", 42, 0, true},
		{"unlock:7:13", "unlock", 7, 13, true},
		{"sub:", "", 0, 0, false},
		{"sub:abc", "", 0, 0, false},
		{"unlock:7", "", 0, 0, false},
		{"unlock:7:xyz", "", 0, 0, false},
		{"refund:1", "", 0, 0, false},
		{"", "", 0, 0, false},
	}
	for _, c := range cases {
		kind, txID, contactID, err := parsePayload(c.in)
		if c.ok != (err == nil) {
			t.Errorf("parsePayload(%q) err = %v, want ok=%v", c.in, err, c.ok)
			continue
		}
		if c.ok && (kind != c.kind || txID != c.txID || contactID != c.contactID) {
			t.Errorf("parsePayload(%q) = %s,%d,%d; want %s,%d,%d",
				c.in, kind, txID, contactID, c.kind, c.txID, c.contactID)
		}
	}
}

func TestPlanTitleFallback(t *testing.T) {
	if got := PlanTitle("2_week"); got != "2_week" {
		t.Errorf("unknown plan title = %q, want raw value", got)
	}
}
