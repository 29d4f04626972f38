package cmd

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"list", "list", 0},
		{"lst", "list", 1},
		{"uplaod", "upload", 2},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"auth", "build", "file", "folder", "storage", "version"}
	tests := []struct {
		input string
		want  string
	}{
		{"fodler", "folder"},
		{"biuld", "build"},
		{"STORAGE", "storage"},
		{"bld", "build"},
		{"zzzzzzzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := suggestCommand(tt.input, commands); got != tt.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flags := []string{"--output", "-o", "--query", "-q", "--recursive", "-r"}
	tests := []struct {
		input string
		want  string
	}{
		{"--outptu", "--output"},
		{"--recursve", "--recursive"},
		{"--", ""},
		{"--qq", "-q"},
	}
	for _, tt := range tests {
		if got := suggestFlag(tt.input, flags); got != tt.want {
			t.Errorf("suggestFlag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
