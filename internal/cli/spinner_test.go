package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func quietSpinner(t *testing.T) *bytes.Buffer {
	t.Helper()
	var status bytes.Buffer
	prevOut, prevSpin := stdout, spinnerOut
	stdout, spinnerOut = &status, io.Discard
	t.Cleanup(func() { stdout, spinnerOut = prevOut, prevSpin })
	return &status
}

func TestSpinnerStop(t *testing.T) {
	quietSpinner(t)
	s := newSpinner("Fetching tree")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// Stop cancels the spinner's own context.
	if !s.Cancelled() {
		t.Error("Cancelled() should report true after Stop")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	quietSpinner(t)
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := newSpinnerWithContext(ctx, "Rendering")
			s.Start()
			if tt.name == "cancel" {
				cancel()
			}
			time.Sleep(100 * time.Millisecond)
			defer cancel()

			if !s.Cancelled() {
				t.Error("spinner should be cancelled with its context")
			}
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	quietSpinner(t)
	s := newSpinner("Placing")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	status := quietSpinner(t)

	s := newSpinner("Saving")
	s.Start()
	s.StopWithSuccess("Saved")
	s = newSpinner("Saving")
	s.Start()
	s.StopWithError("Save failed")

	out := status.String()
	if !strings.Contains(out, iconSuccess+" Saved") || !strings.Contains(out, iconError+" Save failed") {
		t.Errorf("status = %q", out)
	}
}

func TestSpin(t *testing.T) {
	status := quietSpinner(t)
	ctx := context.Background()

	n, err := spin(ctx, "Counting", "Counted", func(context.Context) (int, error) { return 42, nil })
	if err != nil || n != 42 {
		t.Fatalf("spin = %d, %v", n, err)
	}
	if !strings.Contains(status.String(), "Counted") {
		t.Errorf("success message missing: %q", status.String())
	}

	boom := errors.New("boom")
	if _, err := spin(ctx, "Counting", "", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("spin error = %v, want %v", err, boom)
	}
	if !strings.Contains(status.String(), "Counting failed") {
		t.Errorf("failure message missing: %q", status.String())
	}
}
