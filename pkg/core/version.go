package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a dotted-integer version string such as "4", "4.3" or "4.3.1".
// Versions are monotonic within a fragment lineage: incrementing bumps the
// last segment, branching appends a new one. All version logic in the module
// flows through this type; call sites never split or compare the raw string.
//
// The zero Version stands for "no parent": it increments to "1".
type Version string

// ParseVersion validates s as a non-empty dotted-integer string. Segments
// are unsigned: a sign character is not a digit.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return "", fmt.Errorf("empty version string")
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" || !digitsOnly(seg) {
			return "", fmt.Errorf("invalid version %q", s)
		}
		if _, err := strconv.Atoi(seg); err != nil {
			return "", fmt.Errorf("invalid version %q", s)
		}
	}
	return Version(s), nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (v Version) String() string { return string(v) }

// IsZero reports whether v is the zero ("no parent") version.
func (v Version) IsZero() bool { return v == "" }

func (v Version) segments() []int {
	parts := strings.Split(string(v), ".")
	segs := make([]int, len(parts))
	for i, p := range parts {
		// Versions are produced by this type or validated on read, so a
		// parse failure here leaves the segment at zero rather than
		// panicking mid-commit.
		segs[i], _ = strconv.Atoi(p)
	}
	return segs
}

func joinSegments(segs []int) Version {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = strconv.Itoa(s)
	}
	return Version(strings.Join(parts, "."))
}

// Increment returns the next version in the same lineage: "4.3" -> "4.4".
// The zero Version increments to "1", the first version of a new lineage.
func (v Version) Increment() Version {
	if v.IsZero() {
		return "1"
	}
	segs := v.segments()
	segs[len(segs)-1]++
	return joinSegments(segs)
}

// Branch starts an alternate lineage by appending a segment: "4.3" -> "4.3.1".
func (v Version) Branch() Version {
	return Version(string(v) + ".1")
}

// Greater reports whether v is numerically later than other. Comparison is
// segment by segment, with a missing trailing segment read as zero, so
// "4.2" > "4.1.1" and "4.3.1" > "4.3". This is not string comparison.
func (v Version) Greater(other Version) bool {
	a, b := v.segments(), other.segments()
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return av > bv
		}
	}
	return false
}

// IsBranchOf reports whether v has strictly more segments than base. It is
// the branch-detection heuristic used for master version derivation; it does
// not verify that the shared prefix matches.
func (v Version) IsBranchOf(base Version) bool {
	return v.Depth() > base.Depth()
}

// Depth returns the number of dot-separated segments.
func (v Version) Depth() int {
	return len(strings.Split(string(v), "."))
}
