// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello w…"},
		{"hello", 0, ""},
		{"", 5, ""},
		// Double-width characters count as two cells.
		{"日本語テキスト", 6, "日本…"},
	}

	for _, tt := range tests {
		if got := TruncateWidth(tt.in, tt.width); got != tt.want {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 5); got != "ab   " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("abcdef", 4); len([]rune(got)) != 4 {
		t.Errorf("PadWidth should truncate: %q", got)
	}
}

func TestPluralize(t *testing.T) {
	if got := Pluralize(1, "lead", "leads"); got != "lead" {
		t.Errorf("Pluralize(1) = %q", got)
	}
	if got := Pluralize(0, "lead", "leads"); got != "leads" {
		t.Errorf("Pluralize(0) = %q", got)
	}
	if got := Pluralize(2, "lead", "leads"); got != "leads" {
		t.Errorf("Pluralize(2) = %q", got)
	}
}
