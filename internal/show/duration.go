package show

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ClampDuration maps negative durations to 0.
func ClampDuration(seconds int) int {
	if seconds < 0 {
		return 0
	}
	return seconds
}

// ParseDuration coerces free-form input to seconds. It reads the leading
// integer after optional whitespace and sign ("45s" is 45, "12.9" is 12).
// Anything without leading digits, negative values and values that overflow
// an int all become 0.
func ParseDuration(text string) int {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0
	}
	return ClampDuration(n)
}

// FormatDuration renders seconds as M:SS. Minutes are not capped.
func FormatDuration(seconds int) string {
	seconds = ClampDuration(seconds)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// DurationInput is a duration as it arrives from a client. JSON strings are
// coerced through ParseDuration, so "1e3" is 1 just like typed form input.
// JSON numbers keep their value in any notation (1e3 is 1000) and fractions
// are dropped. Other JSON values become 0; it never fails to decode.
type DurationInput int

func (d *DurationInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*d = 0
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*d = DurationInput(ParseDuration(s))
		}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f >= math.MaxInt {
		return nil
	}
	*d = DurationInput(int(f))
	return nil
}

// Int returns the coerced seconds.
func (d DurationInput) Int() int {
	return int(d)
}
