package typetree

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func Test_ParseYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		want    string
		wantErr string
	}{
		{
			name: "nested mapping",
			give: `
a: int
b:
  c: string
d: any
`,
			want: "{a: int, b: {c: string}, d: any}",
		},
		{
			name: "bare type name",
			give: "int",
			want: "int",
		},
		{
			name:    "empty document",
			give:    "   \n",
			wantErr: "empty type tree document",
		},
		{
			name:    "unknown type name",
			give:    "a: wibble",
			wantErr: `unknown type name "wibble"`,
		},
		{
			name:    "sequence values are rejected",
			give:    "a: [1, 2]",
			wantErr: "expected a mapping or a type name",
		},
		{
			name:    "duplicate keys are rejected",
			give:    "a: int\na: string",
			wantErr: `duplicate field key "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseYAML([]byte(tt.give))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func Test_Tree_YAML_RoundTrip(t *testing.T) {
	t.Parallel()

	tree := Branch(
		Field{Key: "b", Tree: Path("c", Leaf[string]())},
		Field{Key: "a", Tree: Leaf[int]()},
		Field{Key: "w", Tree: Any()},
	)

	data, err := yaml.Marshal(tree)
	require.NoError(t, err)

	got, err := ParseYAML(data)
	require.NoError(t, err)

	// field order survives the round trip
	assert.Equal(t, tree.String(), got.String())
}

func Test_Tree_YAML_CustomLeaf(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal(Path("at", Leaf[time.Time]()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "time.Time")

	// custom tags render but do not parse back
	_, err = ParseYAML(data)
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown type name "time.Time"`)
}

func Test_Tree_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give *Tree
		want string
	}{
		{
			name: "leaf",
			give: Leaf[int](),
			want: `"int"`,
		},
		{
			name: "any",
			give: Any(),
			want: `"any"`,
		},
		{
			name: "branch preserves field order",
			give: Branch(
				Field{Key: "b", Tree: Leaf[int]()},
				Field{Key: "a", Tree: Path("c", Leaf[string]())},
			),
			want: `{"b":"int","a":{"c":"string"}}`,
		},
		{
			name: "empty branch",
			give: Branch(),
			want: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(tt.give)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func Test_Tree_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		give    string
		want    string
		wantErr string
	}{
		{
			name: "branch",
			give: `{"b":"int","a":{"c":"string"}}`,
			want: "{b: int, a: {c: string}}",
		},
		{
			name: "leaf",
			give: `"float64"`,
			want: "float64",
		},
		{
			name:    "unknown type name",
			give:    `{"a":"wibble"}`,
			wantErr: `unknown type name "wibble"`,
		},
		{
			name:    "duplicate keys are rejected",
			give:    `{"a":"int","a":"string"}`,
			wantErr: `duplicate field key "a"`,
		},
		{
			name:    "numbers are rejected",
			give:    `5`,
			wantErr: "unexpected JSON token",
		},
		{
			name:    "arrays are rejected",
			give:    `["int"]`,
			wantErr: "unexpected JSON token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got Tree
			err := json.Unmarshal([]byte(tt.give), &got)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
