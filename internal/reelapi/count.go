package reelapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is a view, like or comment total. The service sometimes sends a
// raw number and sometimes an already abbreviated display string; both
// decode to the same integer.
type Count int64

// UnmarshalJSON accepts 1234, 1234.0, "1234", "1,234", "45K", "2.1M" and "1.2B".
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		n, err := ParseCount(text)
		if err != nil {
			return err
		}
		*c = n
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("count: invalid number %s", data)
	}
	n, ok := toCount(f)
	if !ok {
		return fmt.Errorf("count: %s out of range", data)
	}
	*c = n
	return nil
}

// toCount rounds f, rejecting negatives and anything that does not fit in an int64.
func toCount(f float64) (Count, bool) {
	f = math.Round(f)
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if math.IsNaN(f) || f < 0 || f >= float64(math.MaxInt64) {
		return 0, false
	}
	return Count(f), true
}

// String renders the count with the K/M display rule.
func (c Count) String() string {
	return FormatCount(int64(c))
}

var countSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParseCount parses a display string such as "2.1M" or "1,234".
// An empty string is zero.
func ParseCount(text string) (Count, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}

	multiplier := 1.0
	if m, ok := countSuffixes[s[len(s)-1]]; ok {
		multiplier = m
		s = strings.TrimSpace(s[:len(s)-1])
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("count: cannot parse %q", text)
	}
	n, ok := toCount(f * multiplier)
	if !ok {
		return 0, fmt.Errorf("count: %q out of range", text)
	}
	return n, nil
}

// FormatCount abbreviates n: 2500000 is "2.5M", 1500 is "1.5K", 999 stays "999".
func FormatCount(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case abs >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}
