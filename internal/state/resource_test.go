package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ClancyDennis/claude-commander-sub000/internal/state"
)

func TestResourceLifecycle(t *testing.T) {
	r := state.NewResource[int]()
	if got := r.Snapshot().Status; got != state.ResourceIdle {
		t.Fatalf("initial status %q, want idle", got)
	}

	r.Fetch(context.Background(), func(context.Context) (int, error) { return 7, nil })
	snap := r.Snapshot()
	if snap.Status != state.ResourceSuccess || !snap.HasData || snap.Data != 7 {
		t.Errorf("after fetch: %+v", snap)
	}

	r.Fetch(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("backend unavailable")
	})
	snap = r.Snapshot()
	if snap.Status != state.ResourceError || snap.Err != "backend unavailable" {
		t.Errorf("after failed fetch: %+v", snap)
	}
	// Last good data survives an error for the view to keep showing.
	if !snap.HasData || snap.Data != 7 {
		t.Errorf("error clobbered data: %+v", snap)
	}
}

func TestResourceStaleFetchDiscarded(t *testing.T) {
	r := state.NewResource[string]()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Fetch(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "slow", nil
		})
	}()

	<-started
	r.Fetch(context.Background(), func(context.Context) (string, error) { return "fresh", nil })
	close(release)
	<-done

	snap := r.Snapshot()
	if snap.Data != "fresh" {
		t.Errorf("stale fetch won: got %q, want %q", snap.Data, "fresh")
	}
	if snap.Status != state.ResourceSuccess {
		t.Errorf("status %q after stale fetch resolved", snap.Status)
	}
}

func TestResourceSetDataOrphansInFlightFetch(t *testing.T) {
	r := state.NewResource[string]()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Fetch(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "fetched", nil
		})
	}()

	<-started
	r.SetData("pushed")
	close(release)
	<-done

	if got := r.Snapshot().Data; got != "pushed" {
		t.Errorf("in-flight fetch overrode SetData: got %q", got)
	}
}

func TestResourceReset(t *testing.T) {
	r := state.NewResource[int]()
	r.SetData(3)
	r.Reset()
	snap := r.Snapshot()
	if snap.Status != state.ResourceIdle || snap.HasData || snap.Data != 0 {
		t.Errorf("after reset: %+v", snap)
	}
}
