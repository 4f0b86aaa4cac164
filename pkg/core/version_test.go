package core

import "testing"

func TestVersionIncrement(t *testing.T) {
	cases := []struct {
		in   Version
		want Version
	}{
		{"", "1"},
		{"1", "2"},
		{"4.3", "4.4"},
		{"4.3.9", "4.3.10"},
	}
	for _, c := range cases {
		if got := c.in.Increment(); got != c.want {
			t.Errorf("Increment(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestVersionBranch(t *testing.T) {
	if got := Version("4.3").Branch(); got != "4.3.1" {
		t.Errorf("Branch(4.3) = %q, want 4.3.1", got)
	}
	if got := Version("1").Branch(); got != "1.1" {
		t.Errorf("Branch(1) = %q, want 1.1", got)
	}
}

func TestVersionGreater(t *testing.T) {
	cases := []struct {
		a, b Version
		want bool
	}{
		{"4.2", "4.1.1", true}, // numeric, not lexicographic
		{"4.3", "4.3", false},
		{"4.3", "4.3.1", false},
		{"4.3.1", "4.3", true},
		{"4.4", "4.3", true},
		{"10", "9", true},
		{"2", "10", false},
	}
	for _, c := range cases {
		if got := c.a.Greater(c.b); got != c.want {
			t.Errorf("Greater(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestVersionIsBranchOf(t *testing.T) {
	if !Version("4.3.1").IsBranchOf("4.3") {
		t.Error("4.3.1 should be a branch of 4.3")
	}
	if Version("4.4").IsBranchOf("4.3") {
		t.Error("4.4 is not a branch of 4.3")
	}
	if Version("4.3").IsBranchOf("4.3.1") {
		t.Error("4.3 is not a branch of 4.3.1")
	}
}

// Increment preserves depth and always yields a later version; Branch adds
// exactly one segment and always branches.
func TestVersionProperties(t *testing.T) {
	for _, v := range []Version{"1", "4", "4.3", "4.3.1", "12.0.7", "1.1.1.1"} {
		inc := v.Increment()
		if inc.Depth() != v.Depth() {
			t.Errorf("Increment(%q) changed depth: %q", v, inc)
		}
		if !inc.Greater(v) {
			t.Errorf("Increment(%q) = %q is not greater", v, inc)
		}
		br := v.Branch()
		if br.Depth() != v.Depth()+1 {
			t.Errorf("Branch(%q) = %q, depth not +1", v, br)
		}
		if !br.IsBranchOf(v) {
			t.Errorf("Branch(%q) = %q, IsBranchOf false", v, br)
		}
		if !br.Greater(v) {
			t.Errorf("Branch(%q) = %q is not greater", v, br)
		}
	}
}

func TestParseVersion(t *testing.T) {
	for _, ok := range []string{"1", "4.3", "4.3.1", "10.20.30"} {
		if _, err := ParseVersion(ok); err != nil {
			t.Errorf("ParseVersion(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", ".", "4.", ".3", "a.b", "4..3", "4.x", "4.-1", "+1", "-2", "4. 3"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Errorf("ParseVersion(%q) should fail", bad)
		}
	}
}
