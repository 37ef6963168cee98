package app

import (
	"testing"
)

func TestParseCommand_EmptyDefaultsToHelp(t *testing.T) {
	cmd, rest := ParseCommand([]string{})
	if cmd != CommandHelp {
		t.Errorf("ParseCommand([]) = %q, want %q", cmd, CommandHelp)
	}
	if rest != nil {
		t.Errorf("ParseCommand([]) rest = %v, want nil", rest)
	}
}

func TestParseCommand_Login(t *testing.T) {
	cmd, rest := ParseCommand([]string{"login", "taro", "secret"})
	if cmd != CommandLogin {
		t.Errorf("ParseCommand([login ...]) = %q, want %q", cmd, CommandLogin)
	}
	if len(rest) != 2 || rest[0] != "taro" || rest[1] != "secret" {
		t.Errorf("ParseCommand([login taro secret]) rest = %v, want [taro secret]", rest)
	}
}

func TestParseCommand_Open(t *testing.T) {
	cmd, rest := ParseCommand([]string{"open", "/student/chat"})
	if cmd != CommandOpen {
		t.Errorf("ParseCommand([open ...]) = %q, want %q", cmd, CommandOpen)
	}
	if len(rest) != 1 || rest[0] != "/student/chat" {
		t.Errorf("ParseCommand([open /student/chat]) rest = %v", rest)
	}
}

func TestParseCommand_UnknownDefaultsToHelp(t *testing.T) {
	cmd, _ := ParseCommand([]string{"unknown"})
	if cmd != CommandHelp {
		t.Errorf("ParseCommand([unknown]) = %q, want %q", cmd, CommandHelp)
	}
}

func TestParseCommand_NoArgCommands(t *testing.T) {
	tests := []struct {
		arg  string
		want Command
	}{
		{"logout", CommandLogout},
		{"me", CommandMe},
		{"status", CommandStatus},
		{"version", CommandVersion},
	}

	for _, tt := range tests {
		cmd, rest := ParseCommand([]string{tt.arg})
		if cmd != tt.want {
			t.Errorf("ParseCommand([%s]) = %q, want %q", tt.arg, cmd, tt.want)
		}
		if len(rest) != 0 {
			t.Errorf("ParseCommand([%s]) rest = %v, want empty", tt.arg, rest)
		}
	}
}
