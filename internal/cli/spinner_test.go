package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ontolayout/pkg/observability"
)

func TestSpinnerBasic(t *testing.T) {
	s := newSpinner("Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// Spinner should be stopped, not cancelled
	// (Cancelled returns true only if Stop was called due to context cancellation)
	_ = s.Cancelled() // Verify method is callable; value not asserted as Stop() doesn't set cancelled
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()

	// Cancel the context
	cancel()

	// Give goroutine time to notice cancellation
	time.Sleep(100 * time.Millisecond)

	// Spinner should be cancelled
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Testing with timeout...")
	s.Start()

	// Wait for timeout
	time.Sleep(100 * time.Millisecond)

	// Spinner should be cancelled due to timeout
	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Testing success...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done!")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Testing error...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed!")
}

func TestNewSpinnerWithContextNilParent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Test")
	s.Start()
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Building...")
	s.out = &buf
	s.SetMessage("Solving 4 nodes with grid...")
	s.draw("⠋")
	if !strings.Contains(buf.String(), "Solving 4 nodes with grid...") {
		t.Errorf("spinner output = %q", buf.String())
	}
	if s.width != len("Solving 4 nodes with grid...") {
		t.Errorf("width = %d", s.width)
	}
}

func TestSpinnerHooks(t *testing.T) {
	defer observability.Reset()
	s, stop := trackPipeline(context.Background(), "Starting...")
	s.mu.Lock()
	s.out = io.Discard
	s.mu.Unlock()

	observability.Pipeline().OnSolveStart(context.Background(), "graphviz", 12)
	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	if msg != "Solving 12 nodes with graphviz..." {
		t.Errorf("message = %q", msg)
	}

	stop()
	if _, ok := observability.Pipeline().(spinnerHooks); ok {
		t.Error("stop did not restore the previous hooks")
	}
}
