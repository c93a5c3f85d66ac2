package delta

import (
	"testing"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		changes []Change
		want    string
	}{
		{
			name: "insert at point",
			src:  "hello world",
			changes: []Change{
				{Range: Range{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 6}, Text: "big "},
			},
			want: "hello big world",
		},
		{
			name: "replace within one line",
			src:  "hello world",
			changes: []Change{
				{Range: Range{StartLine: 1, StartCol: 7, EndLine: 1, EndCol: 12}, Text: "there"},
			},
			want: "hello there",
		},
		{
			name: "replace across lines",
			src:  "alpha\nbeta\ngamma",
			changes: []Change{
				{Range: Range{StartLine: 1, StartCol: 3, EndLine: 3, EndCol: 3}, Text: "X"},
			},
			want: "alXmma",
		},
		{
			name: "insert newline",
			src:  "alpha",
			changes: []Change{
				{Range: Range{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 6}, Text: "\nbeta"},
			},
			want: "alpha\nbeta",
		},
		{
			name: "delete line content",
			src:  "alpha\nbeta\ngamma",
			changes: []Change{
				{Range: Range{StartLine: 2, StartCol: 1, EndLine: 3, EndCol: 1}, Text: ""},
			},
			want: "alpha\ngamma",
		},
		{
			name: "end line past buffer pads with empty lines",
			src:  "alpha",
			changes: []Change{
				{Range: Range{StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 1}, Text: "gamma"},
			},
			want: "alpha\n\ngamma",
		},
		{
			name: "columns past line end are clamped",
			src:  "ab",
			changes: []Change{
				{Range: Range{StartLine: 1, StartCol: 10, EndLine: 1, EndCol: 20}, Text: "c"},
			},
			want: "abc",
		},
		{
			name: "batch applies in order",
			src:  "ab",
			changes: []Change{
				{Range: Range{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 2}, Text: "X"},
				{Range: Range{StartLine: 1, StartCol: 4, EndLine: 1, EndCol: 4}, Text: "Y"},
			},
			want: "aXbY",
		},
		{
			name:    "empty batch is a no-op",
			src:     "alpha",
			changes: nil,
			want:    "alpha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.src, tt.changes)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvertUndoesApply(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		change Change
	}{
		{
			name:   "single line replacement",
			src:    "hello world",
			change: Change{Range: Range{StartLine: 1, StartCol: 7, EndLine: 1, EndCol: 12}, Text: "there"},
		},
		{
			name:   "insertion",
			src:    "hello world",
			change: Change{Range: Range{StartLine: 1, StartCol: 6, EndLine: 1, EndCol: 6}, Text: " big"},
		},
		{
			name:   "deletion across lines",
			src:    "alpha\nbeta\ngamma",
			change: Change{Range: Range{StartLine: 1, StartCol: 3, EndLine: 3, EndCol: 3}, Text: ""},
		},
		{
			name:   "multi line insertion",
			src:    "alpha\ngamma",
			change: Change{Range: Range{StartLine: 2, StartCol: 1, EndLine: 2, EndCol: 1}, Text: "beta\n"},
		},
		{
			name:   "multi line replacement",
			src:    "one\ntwo\nthree\nfour",
			change: Change{Range: Range{StartLine: 2, StartCol: 2, EndLine: 3, EndCol: 4}, Text: "X\nY\nZ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inverse := Invert(tt.src, tt.change)
			applied := Apply(tt.src, []Change{tt.change})
			restored := Apply(applied, []Change{inverse})
			if restored != tt.src {
				t.Errorf("round trip = %q, want %q (applied = %q, inverse = %+v)", restored, tt.src, applied, inverse)
			}
		})
	}
}
