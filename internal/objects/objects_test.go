package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Get(t *testing.T) {
	t.Parallel()

	obj := map[string]any{
		"a": 1,
		"b": map[string]any{
			"c": "x",
			"d": map[string]any{"e": true},
		},
	}

	tests := []struct {
		name     string
		givePath string
		want     any
		wantOK   bool
	}{
		{
			name:     "top level key",
			givePath: "a",
			want:     1,
			wantOK:   true,
		},
		{
			name:     "nested key",
			givePath: "b.c",
			want:     "x",
			wantOK:   true,
		},
		{
			name:     "deeply nested key",
			givePath: "b.d.e",
			want:     true,
			wantOK:   true,
		},
		{
			name:     "missing key",
			givePath: "z",
			wantOK:   false,
		},
		{
			name:     "missing nested key",
			givePath: "b.z",
			wantOK:   false,
		},
		{
			name:     "path through a leaf",
			givePath: "a.b",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Get(obj, tt.givePath)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		giveA any
		giveB any
		want  bool
	}{
		{
			name:  "equal scalars",
			giveA: 5,
			giveB: 5,
			want:  true,
		},
		{
			name:  "different scalars",
			giveA: 5,
			giveB: "5",
			want:  false,
		},
		{
			name:  "equal nested objects",
			giveA: map[string]any{"a": 1, "b": map[string]any{"c": 2}},
			giveB: map[string]any{"a": 1, "b": map[string]any{"c": 2}},
			want:  true,
		},
		{
			name:  "different nested value",
			giveA: map[string]any{"a": map[string]any{"b": 1}},
			giveB: map[string]any{"a": map[string]any{"b": 2}},
			want:  false,
		},
		{
			name:  "extra key",
			giveA: map[string]any{"a": 1},
			giveB: map[string]any{"a": 1, "b": 2},
			want:  false,
		},
		{
			name:  "object against scalar",
			giveA: map[string]any{"a": 1},
			giveB: 1,
			want:  false,
		},
		{
			name:  "nils",
			giveA: nil,
			giveB: nil,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Equal(tt.giveA, tt.giveB))
			assert.Equal(t, tt.want, Equal(tt.giveB, tt.giveA))
		})
	}
}

func Test_Clone(t *testing.T) {
	t.Parallel()

	t.Run("copies nested maps", func(t *testing.T) {
		t.Parallel()

		orig := map[string]any{"a": 1, "b": map[string]any{"c": 2}}
		got, ok := Clone(orig).(map[string]any)
		require.True(t, ok)
		require.Equal(t, orig, got)

		got["a"] = 99
		got["b"].(map[string]any)["c"] = 99
		assert.Equal(t, 1, orig["a"])
		assert.Equal(t, 2, orig["b"].(map[string]any)["c"])
	})

	t.Run("leaves scalars untouched", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 5, Clone(5))
		assert.Equal(t, "x", Clone("x"))
		assert.Nil(t, Clone(nil))
	})

	t.Run("shares leaf references", func(t *testing.T) {
		t.Parallel()

		xs := []int{1, 2}
		got, ok := Clone(map[string]any{"xs": xs}).(map[string]any)
		require.True(t, ok)

		xs[0] = 99
		assert.Equal(t, []int{99, 2}, got["xs"])
	})
}
