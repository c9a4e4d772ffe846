package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	testCases := []struct {
		name       string
		header     http.Header
		body       string
		retryAfter time.Duration
		limit      int
		remaining  int
	}{
		{
			name:       "retry-after seconds",
			header:     http.Header{"Retry-After": {"30"}},
			retryAfter: 30 * time.Second,
			limit:      -1,
			remaining:  -1,
		},
		{
			name:       "retry-after http date",
			header:     http.Header{"Retry-After": {now.Add(90 * time.Second).Format(http.TimeFormat)}},
			retryAfter: 90 * time.Second,
			limit:      -1,
			remaining:  -1,
		},
		{
			name:       "body retry_after",
			header:     http.Header{},
			body:       `{"error":"Rate limit exceeded","retry_after":60}`,
			retryAfter: 60 * time.Second,
			limit:      -1,
			remaining:  -1,
		},
		{
			name: "reset header only",
			header: http.Header{
				"X-Ratelimit-Limit":     {"60"},
				"X-Ratelimit-Remaining": {"0"},
				"X-Ratelimit-Reset":     {"1767366305"},
			},
			retryAfter: 60 * time.Second,
			limit:      60,
			remaining:  0,
		},
		{
			name:      "nothing reported",
			header:    http.Header{},
			body:      "slow down",
			limit:     -1,
			remaining: -1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info := parseRateLimit(tc.header, []byte(tc.body), now)
			assert.Equal(t, tc.retryAfter, info.RetryAfter)
			assert.Equal(t, tc.limit, info.Limit)
			assert.Equal(t, tc.remaining, info.Remaining)
		})
	}
}

func TestExtractMessage_EmptyFields(t *testing.T) {
	assert.Equal(t, `{"other":1}`, extractMessage([]byte(`{"other":1}`)))
	assert.Equal(t, "", extractMessage(nil))
}
