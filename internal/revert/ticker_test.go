package revert

import (
	"context"
	"testing"
	"time"
)

func TestRunUntilDone(t *testing.T) {
	env := newEnv(
		fakeReply{xml: cleanHistoryXML},
		fakeReply{xml: rollbackOKXML},
	)
	w := env.workflow(t, defaultRequest())

	out := RunUntilDone(context.Background(), w, time.Millisecond)

	if out == nil || !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
}

func TestRunUntilDoneContextCancel(t *testing.T) {
	env := newEnv(
		fakeReply{hold: true},
	)
	w := env.workflow(t, defaultRequest())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	out := RunUntilDone(ctx, w, time.Millisecond)

	if out == nil || !out.Cancelled {
		t.Fatalf("outcome = %+v, want cancelled", out)
	}
	if w.State() != StateCancelled {
		t.Errorf("state = %s, want cancelled", w.State())
	}
}

func TestRunUntilDoneObservesExternalCancel(t *testing.T) {
	env := newEnv(
		fakeReply{hold: true},
	)
	w := env.workflow(t, defaultRequest())

	go func() {
		time.Sleep(10 * time.Millisecond)
		w.Cancel()
	}()

	done := make(chan *Outcome, 1)
	go func() {
		done <- RunUntilDone(context.Background(), w, time.Millisecond)
	}()

	select {
	case out := <-done:
		if out == nil || !out.Cancelled {
			t.Fatalf("outcome = %+v, want cancelled", out)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunUntilDone did not return after Cancel")
	}
}
