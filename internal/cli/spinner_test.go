package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
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

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, true, "Loading...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Loading...") {
		t.Errorf("spinner output %q should contain the message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner output %q should end by clearing the line", got)
	}
}

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, false, "Loading...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if got := out.String(); got != "" {
		t.Errorf("non-terminal spinner wrote %q", got)
	}
}

func TestSpinnerCancelled(t *testing.T) {
	tests := []struct {
		name   string
		cancel bool
		want   bool
	}{
		{"stopped normally", false, false},
		{"parent canceled", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			s := newSpinnerTo(ctx, &syncBuffer{}, true, "x")
			s.Start()
			if tt.cancel {
				cancel()
			}
			s.Stop()
			if got := s.Cancelled(); got != tt.want {
				t.Errorf("Cancelled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, true, "x")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, true, "x")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() without Start() blocked")
	}
}
