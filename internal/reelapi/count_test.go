package reelapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

func TestCount_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		raw  string
		want reelapi.Count
	}{
		{`9000000`, 9_000_000},
		{`9e6`, 9_000_000},
		{`1234.6`, 1235},
		{`"1234"`, 1234},
		{`"1,234"`, 1234},
		{`"45K"`, 45_000},
		{`"2.1M"`, 2_100_000},
		{`"2.1m"`, 2_100_000},
		{`"1.2B"`, 1_200_000_000},
		{`""`, 0},
		{`null`, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			var c reelapi.Count
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &c))
			assert.Equal(t, tc.want, c)
		})
	}
}

func TestCount_UnmarshalJSONRejectsGarbage(t *testing.T) {
	var c reelapi.Count
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`true`), &c))
	assert.Error(t, json.Unmarshal([]byte(`"-5K"`), &c))
}

func TestCount_UnmarshalJSONRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{`-5`, `-0.6`, `1e19`, `9223372036854775808`, `"9999999999B"`, `"1e300"`} {
		t.Run(raw, func(t *testing.T) {
			var c reelapi.Count
			assert.Error(t, json.Unmarshal([]byte(raw), &c))
		})
	}
}

func TestCount_String(t *testing.T) {
	assert.Equal(t, "999", reelapi.Count(999).String())
	assert.Equal(t, "1.5K", reelapi.Count(1500).String())
	assert.Equal(t, "2.5M", reelapi.Count(2_500_000).String())
	assert.Equal(t, "0", reelapi.Count(0).String())
}

func TestCount_MarshalsAsNumber(t *testing.T) {
	raw, err := json.Marshal(struct {
		Views reelapi.Count `json:"views"`
	}{Views: 2_100_000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"views":2100000}`, string(raw))
}
