package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Laying out...")
	s.out = &buf
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if s.Cancelled() {
		t.Error("Cancelled() = true after Stop")
	}
	if !strings.Contains(buf.String(), "Laying out...") {
		t.Errorf("output %q does not contain the message", buf.String())
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 10*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Testing")
			s.out = &bytes.Buffer{}
			s.Start()
			time.Sleep(50 * time.Millisecond)

			if !s.Cancelled() {
				t.Error("Cancelled() = false after context ended")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing")
	s.out = &bytes.Buffer{}
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner("Testing")
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("first")
	s.out = &buf
	s.SetMessage("second")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(buf.String(), "second") {
		t.Errorf("output %q does not contain the new message", buf.String())
	}
}
