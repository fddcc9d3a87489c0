package argparse

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Parsed
	}{
		{
			name: "empty",
			in:   "",
			want: Parsed{Keyword: map[string]any{}},
		},
		{
			name: "positional scalars",
			in:   "1, 2.5, true, hello",
			want: Parsed{
				Positional: []any{int64(1), 2.5, true, "hello"},
				Keyword:    map[string]any{},
			},
		},
		{
			name: "keyword args",
			in:   "min=1, max=10",
			want: Parsed{
				Keyword: map[string]any{"min": int64(1), "max": int64(10)},
			},
		},
		{
			name: "mixed positional and keyword",
			in:   "$user, role=admin",
			want: Parsed{
				Positional: []any{"$user"},
				Keyword:    map[string]any{"role": "admin"},
			},
		},
		{
			name: "comma inside quoted string splits the value",
			in:   `"hello, world"`,
			// Top-level comma split means this actually splits into two
			// fragments; this documents the "no comma inside a value"
			// grammar limitation rather than hiding it.
			want: Parsed{
				Positional: []any{`"hello`, "world\""},
				Keyword:    map[string]any{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"3.14", 3.14},
		{"false", false},
		{`'quoted'`, "quoted"},
		{"$var", "$var"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := coerce(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("coerce(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
