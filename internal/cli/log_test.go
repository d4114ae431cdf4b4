package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"
)

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Settled 42 nodes in 300 ticks")

	re := regexp.MustCompile(`INFO Settled 42 nodes in 300 ticks \(\d+(\.\d+)?[µnm]?s\)`)
	if !re.MatchString(buf.String()) {
		t.Errorf("progress line = %q, want message with elapsed time", buf.String())
	}
}

func TestProgressDoneBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.WarnLevel)).done("Settled 1 nodes")
	if buf.Len() != 0 {
		t.Errorf("progress logged at warn level: %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("logger attached to the context was not returned")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("empty context should fall back to log.Default()")
	}
}

// TestLogLevelPrecedence checks that the config level applies unless -v
// forces debug.
func TestLogLevelPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		verbose bool
		want    log.Level
	}{
		{"default", "", false, log.InfoLevel},
		{"config warn", "\n[log]\nlevel = \"warn\"\n", false, log.WarnLevel},
		{"config error", "\n[log]\nlevel = \"error\"\n", false, log.ErrorLevel},
		{"verbose beats config", "\n[log]\nlevel = \"error\"\n", true, log.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.config)
			c := New(&bytes.Buffer{}, log.InfoLevel)
			root := c.RootCommand()
			root.SetOut(&bytes.Buffer{})
			args := []string{"--config", env.config, "config", "path"}
			if tt.verbose {
				args = append(args, "-v")
			}
			root.SetArgs(args)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatal(err)
			}
			if got := c.Logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}
