package splitter

import (
	"slices"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		result string
		delim  string
		want   []string
	}{
		{name: "three fragments", result: "a||b||c", want: []string{"a", "b", "c"}},
		{name: "trims and drops empties", result: "  哈哈 || ||绝了||", want: []string{"哈哈", "绝了"}},
		{name: "single", result: "only one", want: []string{"only one"}},
		{name: "blank", result: "   ", want: []string{}},
		{name: "custom delimiter", result: "x|y", delim: "|", want: []string{"x", "y"}},
		{name: "single pipe kept with default", result: "a|b", want: []string{"a|b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Split(tc.result, tc.delim)
			if !slices.Equal(got, tc.want) {
				t.Fatalf("Split(%q) = %q, want %q", tc.result, got, tc.want)
			}
		})
	}
}
