package discovery_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"newsroom/internal/discovery"
	"newsroom/internal/services"
	"newsroom/internal/testsupport"
)

func TestDiscoverSkipsKnownIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.SeedTranscript(t, st, "v2", "cached")
	if _, err := st.Enqueue(ctx, "UCtest", "v3"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	lister := &testsupport.FakeChannel{IDs: []string{"v1", "v2", "v3", "v4", "v5"}}
	svc := discovery.New(st, lister, nil, nil)

	added, err := svc.Discover(ctx, "UCtest", 2)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 enqueued, got %d", added)
	}
	refs, err := st.ListQueue(ctx, 10)
	if err != nil {
		t.Fatalf("ListQueue failed: %v", err)
	}
	var ids []string
	for _, ref := range refs {
		ids = append(ids, ref.VideoID)
	}
	if len(ids) != 3 || ids[0] != "v3" || ids[1] != "v1" || ids[2] != "v4" {
		t.Fatalf("unexpected queue %v", ids)
	}

	again, err := svc.Discover(ctx, "UCtest", 10)
	if err != nil {
		t.Fatalf("second Discover failed: %v", err)
	}
	if again != 1 {
		t.Fatalf("expected only v5 to be new, got %d", again)
	}
}

func TestDiscoverReachesOlderUploads(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lister := &testsupport.FakeChannel{}
	for i := 12; i >= 1; i-- {
		lister.IDs = append(lister.IDs, fmt.Sprintf("v%02d", i))
	}
	// Everything in the first listing window is already transcribed.
	for _, id := range lister.IDs[:10] {
		testsupport.SeedTranscript(t, st, id, "cached")
	}

	added, err := discovery.New(st, lister, nil, nil).Discover(ctx, "UCtest", 5)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected the 2 older uploads to be queued, got %d", added)
	}
	for _, id := range []string{"v02", "v01"} {
		if ok, err := st.QueueContains(ctx, id); err != nil || !ok {
			t.Fatalf("expected %s queued (%v)", id, err)
		}
	}
	if lister.Calls != 2 {
		t.Fatalf("expected the window to widen once, got %d listings", lister.Calls)
	}
}

func TestDiscoverSourceFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	lister := &testsupport.FakeChannel{Err: errors.New("quota exceeded")}

	_, err := discovery.New(st, lister, nil, nil).Discover(context.Background(), "UCtest", 5)
	if !errors.Is(err, services.ErrDiscoverySource) {
		t.Fatalf("expected ErrDiscoverySource, got %v", err)
	}
	if lister.Calls != 1 {
		t.Fatalf("expected a single listing call, got %d", lister.Calls)
	}
}

func TestDiscoverRequiresChannel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	_, err := discovery.New(st, &testsupport.FakeChannel{}, nil, nil).Discover(context.Background(), " ", 5)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
