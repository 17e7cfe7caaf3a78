package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute path", input: "sqlite:///var/lib/rolecraft.db", expected: "/var/lib/rolecraft.db"},
		{name: "dot relative path", input: "sqlite://./game.db", expected: "./game.db"},
		{name: "bare relative path", input: "sqlite://game.db", expected: "./game.db"},
		{name: "escaped path", input: "sqlite://my%20game.db", expected: "./my game.db"},
		{name: "query preserved", input: "sqlite://game.db?_pragma=busy_timeout(5000)", expected: "./game.db?_pragma=busy_timeout(5000)"},
		{name: "wrong scheme", input: "postgres://localhost/game", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDSN(%q) expected error, got %q", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDSN(%q) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
