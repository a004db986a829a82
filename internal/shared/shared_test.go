package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)

		if err := SetLogLevel(logger, "warn"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}

		if err := SetLogLevel(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Error("expected level to be unchanged after invalid input")
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("written to file")

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(content), "written to file") {
			t.Errorf("expected log line in file, got %q", content)
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == b {
			t.Error("expected unique ids")
		}
		if len(a) != 36 {
			t.Errorf("expected uuid string, got %s", a)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		compact, err := MarshalJSON(map[string]int{"a": 1}, false)
		if err != nil || string(compact) != `{"a":1}` {
			t.Errorf("unexpected compact output %s (%v)", compact, err)
		}

		pretty, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil || !strings.Contains(string(pretty), "\n  \"a\": 1") {
			t.Errorf("unexpected pretty output %s (%v)", pretty, err)
		}
	})

	t.Run("browserCommand", func(t *testing.T) {
		for goos, bin := range map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "cmd"} {
			cmd, err := browserCommand(goos, "https://example.com")
			if err != nil {
				t.Fatalf("%s: unexpected error %v", goos, err)
			}
			if filepath.Base(cmd.Path) != bin && cmd.Args[0] != bin {
				t.Errorf("%s: expected %s, got %v", goos, bin, cmd.Args)
			}
		}

		if _, err := browserCommand("plan9", "https://example.com"); err == nil {
			t.Error("expected unsupported platform error")
		}
	})

	t.Run("MoviePageURL", func(t *testing.T) {
		if got := MoviePageURL(550); got != "https://www.themoviedb.org/movie/550" {
			t.Errorf("unexpected URL %s", got)
		}
	})
}
