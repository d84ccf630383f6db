package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestSpinner starts a spinner on a fake clock and waits for its ticker.
func newTestSpinner(t *testing.T, delay time.Duration) (*startupSpinner, *clockwork.FakeClock, *syncBuffer) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	out := &syncBuffer{}
	sp := newClockedSpinner(out, clock, delay, 100*time.Millisecond)
	t.Cleanup(sp.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("spinner ticker never started: %v", err)
	}
	return sp, clock, out
}

func waitForOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !strings.Contains(out.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("expected output to contain %q, got %q", want, out.String())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestStartupSpinnerShowsAfterDelay(t *testing.T) {
	sp, clock, out := newTestSpinner(t, 250*time.Millisecond)
	sp.Stage(stageOpeningSession, "/tmp/session.db")

	clock.Advance(100 * time.Millisecond)
	clock.Advance(100 * time.Millisecond)
	if got := out.String(); got != "" {
		t.Fatalf("expected nothing before the delay, got %q", got)
	}

	clock.Advance(100 * time.Millisecond)
	waitForOutput(t, out, "Opening session... - /tmp/session.db")

	sp.Stop()
	if !strings.HasSuffix(out.String(), clearLine) {
		t.Fatal("expected the line cleared on stop")
	}
}

func TestStartupSpinnerImmediate(t *testing.T) {
	sp, clock, out := newTestSpinner(t, 0)

	sp.Stage(stageLoadingSettings, "")
	if got := out.String(); !strings.Contains(got, "| Reading settings...") {
		t.Fatalf("expected the first frame drawn at once, got %q", got)
	}

	clock.Advance(100 * time.Millisecond)
	waitForOutput(t, out, "/ Reading settings...")
}

func TestStartupSpinnerSilentWhenNeverShown(t *testing.T) {
	sp, _, out := newTestSpinner(t, time.Hour)
	sp.Stage(stageReady, "")
	sp.Stop()
	if got := out.String(); got != "" {
		t.Fatalf("expected no output, got %q", got)
	}
}

func TestStartupSpinnerStopIsIdempotent(t *testing.T) {
	sp := newStartupSpinner(nil, time.Hour)
	sp.Stop()
	sp.Stop()
	sp.Stage(stageReady, "")

	var nilSpinner *startupSpinner
	nilSpinner.Stage(stageReady, "")
	nilSpinner.Stop()
}

func TestFormatStageMessage(t *testing.T) {
	tests := []struct {
		name   string
		stage  startupStage
		detail string
		want   string
	}{
		{"NoDetail", stageLoadingSettings, "", "Reading settings..."},
		{"WithDetail", stageConnecting, " https://api.example.com ", "Preparing API client... - https://api.example.com"},
		{"UnknownStage", startupStage(99), "", "Starting..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatStageMessage(tt.stage, tt.detail); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
