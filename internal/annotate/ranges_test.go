package annotate

import (
	"reflect"
	"testing"
)

func TestExpandNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{
			name: "simple range",
			text: "[3-5]",
			want: []int{3, 4, 5},
		},
		{
			name: "comma list",
			text: "[1,2,3]",
			want: []int{1, 2, 3},
		},
		{
			name: "range plus standalone",
			text: "[3-5,8]",
			want: []int{3, 4, 5, 8},
		},
		{
			name: "en dash range",
			text: "[3–5]",
			want: []int{3, 4, 5},
		},
		{
			name: "em dash range",
			text: "[3—5]",
			want: []int{3, 4, 5},
		},
		{
			name: "oversized range rejected",
			text: "[1-60]",
			want: nil,
		},
		{
			name: "descending range rejected",
			text: "[5-3]",
			want: nil,
		},
		{
			name: "range overlapping standalone deduplicates",
			text: "[3-5,4]",
			want: []int{3, 4, 5},
		},
		{
			name: "zero rejected",
			text: "[0]",
			want: nil,
		},
		{
			name: "upper bound rejected",
			text: "[1000]",
			want: nil,
		},
		{
			name: "just under upper bound",
			text: "[999]",
			want: []int{999},
		},
		{
			name: "years are noise",
			text: "(Smith, 2020)",
			want: nil,
		},
		{
			name: "not number-like",
			text: "(ibid.)",
			want: nil,
		},
		{
			name: "unsorted input sorted",
			text: "[9,2,5]",
			want: []int{2, 5, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandNumbers(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandNumbers(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
