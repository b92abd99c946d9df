package eligibility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Answer is a quiz answer. Clients send JSON booleans, but also "yes"/"no",
// "true"/"false" strings and 0/1 numbers; all decode to a bool.
type Answer bool

// UnmarshalJSON implements json.Unmarshaler.
func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = false
		return nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*a = Answer(x)
	case float64:
		*a = x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "y", "true", "1":
			*a = true
		case "no", "n", "false", "0", "":
			*a = false
		default:
			return fmt.Errorf("unrecognized answer %q", x)
		}
	default:
		return fmt.Errorf("unsupported answer type %T", v)
	}
	return nil
}

// Bools converts answers to plain bools.
func Bools(in []Answer) []bool {
	out := make([]bool, len(in))
	for i, a := range in {
		out[i] = bool(a)
	}
	return out
}
