package shellquote

import (
	"os/exec"
	"testing"
)

func TestArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"simple", "'simple'"},
		{"two words", "'two words'"},
		{" ", "' '"},
		{"it's", `'it'\''s'`},
		{"'", `''\'''`},
		{"''", `''\'''\'''`},
		{`back\slash`, `'back\slash'`},
		{"$HOME", "'$HOME'"},
		{"a;b|c&&d", "'a;b|c&&d'"},
		{"`whoami`", "'`whoami`'"},
		{"*.go", "'*.go'"},
	}
	for _, tt := range tests {
		if got := Arg(tt.in); got != tt.want {
			t.Errorf("Arg(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"echo hi", `"echo hi"`},
		{`say "hi"`, `"say \"hi\""`},
		{`a\b`, `"a\\b"`},
		// Backslashes must be escaped before quotes, or the backslash
		// added for the quote would itself get doubled.
		{`\"`, `"\\\""`},
	}
	for _, tt := range tests {
		if got := Command(tt.in); got != tt.want {
			t.Errorf("Command(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

// TestArgRoundTrip feeds quoted strings through a real shell and
// checks they come back byte-identical.
func TestArgRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	inputs := []string{
		"",
		"plain",
		"two words",
		"   ",
		"it's a 'test'",
		`back\slash and \\double`,
		"$HOME `date` $(pwd)",
		"a;b|c&&d||e>f<g",
		"newline-free but weird: !~#%^&*()[]{}",
	}
	for _, in := range inputs {
		out, err := exec.Command("sh", "-c", "printf %s "+Arg(in)).Output()
		if err != nil {
			t.Fatalf("sh failed for %q: %v", in, err)
		}
		if string(out) != in {
			t.Errorf("round trip changed %q into %q", in, string(out))
		}
	}
}
