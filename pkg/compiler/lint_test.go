package compiler

import (
	"reflect"
	"testing"
)

func TestLint(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "Clean",
			src:  "RG int x = 1; RG_Print(x);",
			want: nil,
		},
		{
			name: "Unread Variable",
			src:  "RG int x = 1; RG int y = x;",
			want: []string{`line 1: variable "y" is declared but never read`},
		},
		{
			name: "Assignment Is Not A Read",
			src:  "RG int x = 1; x = 2;",
			want: []string{`line 1: variable "x" is declared but never read`},
		},
		{
			name: "Array Ops Count As Use",
			src:  "RG int a[2]; insert(a, 1);",
			want: nil,
		},
		{
			name: "Loop Variable",
			src:  "for (RG int i = 0; i < 3; i = i + 1) { RG int unused = i; }",
			want: []string{`line 1: variable "unused" is declared but never read`},
		},
		{
			name: "Unreachable After Break",
			src:  "while (true) { break; RG_Print(1); }",
			want: []string{"line 1: unreachable statement after break"},
		},
		{
			name: "Unreachable After Continue",
			src:  "RG int n = 0; while (n < 3) { n = n + 1; continue; n = 0; }",
			want: []string{"line 1: unreachable statement after continue"},
		},
		{
			name: "Reports Declaration Line",
			src:  "RG int a = 1;\nRG_Print(a);\n\nRG float b[2];\nwhile (true) {\n  break;\n  a = 2;\n}",
			want: []string{"line 6: unreachable statement after break", `line 4: variable "b" is declared but never read`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, _, err := parseSrc(t, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, w := range Lint(prog) {
				got = append(got, w.String())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lint() = %q, want %q", got, tt.want)
			}
		})
	}
}
