package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultSpinnerInterval = 120 * time.Millisecond
	defaultSpinnerDelay    = 300 * time.Millisecond

	clearLine = "\r\033[2K"
)

type startupStage int

const (
	stageLoadingSettings startupStage = iota
	stageOpeningSession
	stageConnecting
	stageReady
)

var stageMessages = map[startupStage]string{
	stageLoadingSettings: "Reading settings...",
	stageOpeningSession:  "Opening session...",
	stageConnecting:      "Preparing API client...",
	stageReady:           "Turning to today's page...",
}

var spinnerFrames = []rune(`|/-\`)

// startupSpinner draws one progress line on stderr before the TUI takes the
// screen. It stays hidden until delay has passed, so fast starts print
// nothing.
type startupSpinner struct {
	out      io.Writer
	clock    clockwork.Clock
	delay    time.Duration
	interval time.Duration

	mu      sync.Mutex
	message string
	shown   bool
	stopped bool
	frame   int

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newStartupSpinner(w io.Writer, delay time.Duration) *startupSpinner {
	return newClockedSpinner(w, clockwork.NewRealClock(), delay, defaultSpinnerInterval)
}

func newClockedSpinner(w io.Writer, clock clockwork.Clock, delay, interval time.Duration) *startupSpinner {
	if w == nil {
		w = io.Discard
	}
	s := &startupSpinner{
		out:      w,
		clock:    clock,
		delay:    delay,
		interval: interval,
		shown:    delay <= 0,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run(clock.Now())
	return s
}

// Stage replaces the message. Calls after Stop are ignored.
func (s *startupSpinner) Stage(stage startupStage, detail string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.message = formatStageMessage(stage, detail)
	if s.shown {
		s.drawLocked()
	}
}

// Stop ends the animation and wipes the line if it was drawn. Safe to call
// more than once and on a nil spinner.
func (s *startupSpinner) Stop() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.quit)
		<-s.done

		s.mu.Lock()
		defer s.mu.Unlock()
		s.stopped = true
		if s.shown && s.message != "" {
			_, _ = io.WriteString(s.out, clearLine)
		}
	})
}

func (s *startupSpinner) run(started time.Time) {
	defer close(s.done)
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.Chan():
			s.mu.Lock()
			if !s.shown && s.clock.Since(started) >= s.delay {
				s.shown = true
			}
			if s.shown {
				s.drawLocked()
			}
			s.mu.Unlock()
		}
	}
}

// drawLocked advances one frame. Callers hold mu.
func (s *startupSpinner) drawLocked() {
	if s.message == "" {
		return
	}
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	s.frame++
	_, _ = fmt.Fprintf(s.out, "%s%c %s", clearLine, frame, s.message)
}

func formatStageMessage(stage startupStage, detail string) string {
	msg, ok := stageMessages[stage]
	if !ok {
		msg = "Starting..."
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		msg += " - " + detail
	}
	return msg
}
