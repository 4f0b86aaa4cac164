package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUncommitRestoresState(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	mustCommit(t, svc, CommitInput{
		Message:    "first",
		Candidates: []Candidate{{Name: "01_intro.j2", Type: "intro", Content: "Hello"}},
	})
	stateAfterFirst := store.state.clone()

	mustCommit(t, svc, CommitInput{
		Message: "second",
		Candidates: []Candidate{
			{Name: "01_intro.j2", Type: "intro", Content: "Hello"},
			{Name: "02_body.j2", Type: "body", Content: "Body"},
		},
	})

	res, err := svc.Uncommit(context.Background())
	if err != nil {
		t.Fatalf("uncommit failed: %v", err)
	}
	if res.Current.Version != "1" {
		t.Errorf("current after revert = %q, want 1", res.Current.Version)
	}

	opt := cmp.AllowUnexported(memState{})
	if diff := cmp.Diff(stateAfterFirst, store.state, opt); diff != "" {
		t.Errorf("store state not restored (-want +got):\n%s", diff)
	}
}

func TestUncommitWithoutCurrent(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Uncommit(context.Background())
	if !errors.Is(err, ErrNoCurrentMaster) {
		t.Fatalf("want ErrNoCurrentMaster, got %v", err)
	}
}

func TestUncommitWithoutParent(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	mustCommit(t, svc, CommitInput{
		Message:    "first",
		Candidates: []Candidate{{Name: "01_intro.j2", Type: "intro", Content: "Hello"}},
	})

	_, err := svc.Uncommit(context.Background())
	if !errors.Is(err, ErrNoPreviousMaster) {
		t.Fatalf("want ErrNoPreviousMaster, got %v", err)
	}
	if store.state.currentMaster() == nil {
		t.Error("failed uncommit cleared the current master")
	}
}

// A commit may reference an old fragment verbatim instead of creating one.
// Uncommitting that commit must not delete the old fragment, even though its
// id is absent from the previous master's list: deletion is decided by
// per-type version comparison, not by id set difference.
func TestUncommitSparesReusedFragments(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	first := mustCommit(t, svc, CommitInput{
		Message: "first",
		Candidates: []Candidate{
			{Name: "01_intro.j2", Type: "intro", Content: "Intro"},
			{Name: "02_body.j2", Type: "body", Content: "B1"},
		},
	})
	introID := first.Fragments[0].ID

	mustCommit(t, svc, CommitInput{
		Message: "second",
		Candidates: []Candidate{
			{Name: "01_intro.j2", Type: "intro", Content: "Intro v2"},
			{Name: "02_body.j2", Type: "body", Content: "B1"},
		},
	})

	// Roll the intro content back to the first version: the composition
	// references the original fragment id again, across a lineage gap.
	third := mustCommit(t, svc, CommitInput{
		Message: "intro returns",
		Candidates: []Candidate{
			{Name: "01_intro.j2", Type: "intro", Content: "Intro"},
			{Name: "02_body.j2", Type: "body", Content: "B2"},
		},
	})
	if third.Fragments[0].ID != introID {
		t.Fatalf("intro not reused: %d != %d", third.Fragments[0].ID, introID)
	}

	res, err := svc.Uncommit(context.Background())
	if err != nil {
		t.Fatalf("uncommit failed: %v", err)
	}
	for _, id := range res.DeletedIDs {
		if id == introID {
			t.Fatal("uncommit deleted a fragment reused from an older lineage")
		}
	}
	if store.state.fragmentByID(introID) == nil {
		t.Fatal("reused intro fragment is gone from the store")
	}
	// the body fragment the undone commit introduced is gone
	if store.state.fragmentByContent("B2") != nil {
		t.Error("fragment introduced by the undone commit survived")
	}
}
