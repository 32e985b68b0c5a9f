package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFormatData(t *testing.T) {
	tests := []struct {
		pat  string
		args []string
		want []byte
	}{
		{"", nil, nil},
		{"v", []string{"25565"}, []byte{0xdd, 0xc7, 0x01}},
		{"v", []string{"-1"}, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{"V", []string{"128"}, []byte{0x80, 0x01}},
		{"s %", []string{"hi", "true"}, []byte{2, 'h', 'i', 1}},
		{"p r", []string{"ab", "cd"}, []byte{2, 'a', 'b', 'c', 'd'}},
		{"q", []string{`a\x00b`}, []byte{'a', 0, 'b'}},
		{"1 2 4", []string{"1", "2", "3"}, []byte{1, 0, 2, 0, 0, 0, 3}},
		{"< 2 > 2", []string{"1", "1"}, []byte{1, 0, 0, 1}},
		{"8", []string{"258"}, []byte{0, 0, 0, 0, 0, 0, 1, 2}},

		// A frame: length prefix, then the packet ID and payload.
		{"(v v s)", []string{"0", "763", "ab"}, []byte{6, 0, 0xfb, 0x05, 2, 'a', 'b'}},
		{"@(1)", []string{"9"}, []byte{0, 1, 9}},
		{"((1))", []string{"9"}, []byte{2, 1, 9}},
	}
	for _, tc := range tests {
		enc, rest, err := formatData(tc.pat, tc.args)
		if err != nil {
			t.Errorf("formatData(%q, %q): unexpected error: %v", tc.pat, tc.args, err)
			continue
		}
		if len(rest) != 0 {
			t.Errorf("formatData(%q, %q): unused arguments %q", tc.pat, tc.args, rest)
		}
		if diff := cmp.Diff(enc.Encode(nil), tc.want, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("formatData(%q, %q) (-got, +want):\n%s", tc.pat, tc.args, diff)
		}
	}
}

func TestFormatDataErrors(t *testing.T) {
	tests := []struct {
		pat  string
		args []string
	}{
		{"x", nil},
		{"v", nil},
		{"v", []string{"2147483648"}},
		{"1", []string{"256"}},
		{"(v", []string{"1"}},
		{"%", []string{"maybe"}},
		{"p", []string{string(make([]byte, 256))}},
	}
	for _, tc := range tests {
		if enc, _, err := formatData(tc.pat, tc.args); err == nil {
			t.Errorf("formatData(%q, %q): got %x, want error", tc.pat, tc.args, enc.Encode(nil))
		}
	}
}
