package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeKey(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{name: "basic normalization", input: "Song Title", want: "song title"},
		{name: "extra whitespace", input: "  Song   Title  ", want: "song title"},
		{name: "mixed case", input: "SoNg TiTlE", want: "song title"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKey(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{7, "0:07"},
		{187, "3:07"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-4, "0:00"},
	}

	for _, tt := range tc {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestApplyLogLevel(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{})

	t.Run("valid level", func(t *testing.T) {
		if err := ApplyLogLevel(logger, "debug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})

	t.Run("empty keeps level", func(t *testing.T) {
		if err := ApplyLogLevel(logger, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected level unchanged, got %v", logger.GetLevel())
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if err := ApplyLogLevel(logger, "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}

func TestVisibility(t *testing.T) {
	if Visibility(true) != "public" || Visibility(false) != "private" {
		t.Errorf("unexpected visibility labels: %s/%s", Visibility(true), Visibility(false))
	}
}

func TestBrowserCommand(t *testing.T) {
	const page = "http://127.0.0.1:3000/catalog.html?artist_id=a1"

	t.Run("platform openers", func(t *testing.T) {
		tc := []struct {
			goos string
			want string
		}{
			{"darwin", "open"},
			{"linux", "xdg-open"},
			{"windows", "rundll32"},
		}

		for _, tt := range tc {
			cmd, err := browserCommand(tt.goos, "", page)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.goos, err)
			}
			if cmd.Args[0] != tt.want || cmd.Args[len(cmd.Args)-1] != page {
				t.Errorf("%s: got args %v", tt.goos, cmd.Args)
			}
		}
	})

	t.Run("BROWSER overrides platform", func(t *testing.T) {
		cmd, err := browserCommand("linux", "firefox --new-tab", page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(cmd.Args, " ") != "firefox --new-tab "+page {
			t.Errorf("got args %v", cmd.Args)
		}
	})

	t.Run("rejects non-web URLs", func(t *testing.T) {
		for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "not a url", "http://"} {
			if _, err := browserCommand("linux", "", raw); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", raw, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		if _, err := browserCommand("plan9", "", page); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}
