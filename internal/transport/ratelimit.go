package transport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitInfo is what a 429 response says about when to come back.
// Limit and Remaining are -1 when the server did not report them.
type RateLimitInfo struct {
	RetryAfter time.Duration
	Limit      int
	Remaining  int
	Reset      time.Time
}

func parseRateLimit(header http.Header, body []byte, now time.Time) *RateLimitInfo {
	info := &RateLimitInfo{
		Limit:     headerInt(header, "X-RateLimit-Limit"),
		Remaining: headerInt(header, "X-RateLimit-Remaining"),
	}

	if reset := headerInt(header, "X-RateLimit-Reset"); reset > 0 {
		info.Reset = time.Unix(int64(reset), 0)
	}

	if retry := strings.TrimSpace(header.Get("Retry-After")); retry != "" {
		if secs, err := strconv.Atoi(retry); err == nil && secs >= 0 {
			info.RetryAfter = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(retry); err == nil && at.After(now) {
			info.RetryAfter = at.Sub(now)
		}
	}

	if info.RetryAfter == 0 {
		var payload struct {
			RetryAfter float64 `json:"retry_after"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.RetryAfter > 0 {
			info.RetryAfter = time.Duration(payload.RetryAfter * float64(time.Second))
		}
	}

	if info.RetryAfter == 0 && !info.Reset.IsZero() && info.Reset.After(now) {
		info.RetryAfter = info.Reset.Sub(now)
	}

	return info
}

func headerInt(header http.Header, key string) int {
	v := strings.TrimSpace(header.Get(key))
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
