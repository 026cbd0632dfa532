package source

import (
	"testing"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple string",
			input: "hello",
			want:  "'hello'",
		},
		{
			name:  "string with spaces",
			input: "hello world",
			want:  "'hello world'",
		},
		{
			name:  "string with single quote",
			input: "it's",
			want:  "'it'\\''s'",
		},
		{
			name:  "string with semicolon",
			input: "test; rm -rf /",
			want:  "'test; rm -rf /'",
		},
		{
			name:  "string with command substitution",
			input: "$(whoami)",
			want:  "'$(whoami)'",
		},
		{
			name:  "empty string",
			input: "",
			want:  "''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shellEscape(tt.input)
			if got != tt.want {
				t.Errorf("shellEscape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShellCommand(t *testing.T) {
	got := shellCommand("sysctl", "-n", "hw.ncpu")
	want := "'sysctl' '-n' 'hw.ncpu'"
	if got != want {
		t.Errorf("shellCommand() = %q, want %q", got, want)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/proc/stat", true},
		{"/sys/class/net/eth0/statistics/rx_bytes", true},
		{"/proc/net/dev", true},
		{"", false},
		{"proc/stat", false},
		{"/proc/../etc/shadow", false},
		{"/proc/stat; rm -rf /", false},
		{"/tmp/$(id)", false},
		{"/tmp/a b", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := validatePath(tt.path); got != tt.want {
				t.Errorf("validatePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
