package sqlite

import (
	"fmt"
	"strconv"
	"strings"
)

// The masters.contents column stores the composition as an ordered integer
// list, encoded as "[3,1,7]" ("[]" when empty). The encoding is hand-rolled
// rather than delegated to a serialization library: order is significant,
// the round-trip must be exact, and the column doubles as the uniqueness
// key for compositions, so the byte form has to be canonical.

func encodeIDs(ids []int64) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

func decodeIDs(s string) ([]int64, error) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("malformed id list %q", s)
	}
	body := s[1 : len(s)-1]
	if body == "" {
		return []int64{}, nil
	}
	parts := strings.Split(body, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed id list %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
