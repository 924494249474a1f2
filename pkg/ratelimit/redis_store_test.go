package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIncrementResult(t *testing.T) {
	t.Parallel()

	t.Run("valid reply", func(t *testing.T) {
		t.Parallel()

		allowed, current, pttl, err := parseIncrementResult([]any{int64(1), int64(42), int64(5000)})
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, int64(42), current)
		assert.Equal(t, int64(5000), pttl)

		allowed, _, _, err = parseIncrementResult([]any{int64(0), int64(90), int64(-1)})
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("malformed replies error instead of panicking", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  any
		}{
			{name: "not a slice", raw: "OK"},
			{name: "wrong length", raw: []any{int64(1), int64(42)}},
			{name: "string element", raw: []any{"1", int64(42), int64(5000)}},
			{name: "nil element", raw: []any{int64(1), nil, int64(5000)}},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, _, _, err := parseIncrementResult(tt.raw)
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unexpected script result")
			})
		}
	})
}
