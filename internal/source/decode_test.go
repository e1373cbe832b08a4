package source_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"explorer/internal/source"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"array root", `[{"a":1},{"a":2}]`, `[{"a":1},{"a":2}]`},
		{"first array member", `{"count":2,"meta":{"x":[1]},"items":[{"b":"x"}],"more":[{"c":1}]}`, `[{"b":"x"}]`},
		{"no array", `{"a":{"b":1}}`, `[]`},
		{"scalar root", `42`, `[]`},
		{"non-object elements skipped", `[1,{"a":1},null,"x",[2]]`, `[{"a":1}]`},
		{"key order kept", `[{"z":1,"a":{"y":true,"b":null},"m":[1,"x"]}]`, `[{"z":1,"a":{"y":true,"b":null},"m":[1,"x"]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := source.Decode([]byte(tt.payload))
			require.NoError(t, err)
			got, err := json.Marshal(records)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, payload := range []string{"", "<html>", `[{"a":1}`, `{"a":}`} {
		_, err := source.Decode([]byte(payload))
		assert.ErrorIs(t, err, source.ErrMalformed, payload)
	}
}

func TestDecode_ValueTypes(t *testing.T) {
	records, err := source.Decode([]byte(`[{"s":"x","n":2.5,"t":true,"f":false,"z":null,"o":{"k":1},"a":[]}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]

	for key, want := range map[string]any{"s": "x", "n": 2.5, "t": true, "f": false, "z": nil} {
		v, ok := rec.Get(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, v, key)
	}
	a, _ := rec.Get("a")
	assert.Equal(t, []any{}, a)
}
