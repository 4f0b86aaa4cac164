// Fragment and Master are the central entities of the domain.
package core

import "time"

// Fragment is one content-addressed version of a named slot ("type") in the
// composed document. Content is globally unique across the store: committing
// bytes that already exist reuses the existing row instead of inserting.
type Fragment struct {
	ID            int64
	Type          string
	ParentID      *int64
	Version       Version
	Content       string
	CommitMessage string
	CreatedAt     time.Time
}

// Master is one full ordered snapshot of fragment references representing
// the composed document at a point in history. FragmentIDs is presentation
// order and is meaningful. Exactly one master is current at any time;
// IsCurrent is the only mutable field on a row.
type Master struct {
	ID            int64
	ParentID      *int64
	Version       Version
	FragmentIDs   []int64
	IsCurrent     bool
	CommitMessage string
	CreatedAt     time.Time
}

// Candidate is one entry of the working set handed to Commit: the decoded
// name, slot type and content of a fragment file. Candidates arrive in
// presentation order.
type Candidate struct {
	Name    string
	Type    string
	Content string
}

// CommitMode selects how the working set is reconciled against the current
// master.
type CommitMode int

const (
	// FullCommit treats the working set as the complete slot list: new
	// types are added, and current types without a candidate are dropped.
	FullCommit CommitMode = iota

	// PartialCommit only touches the named slots. Every other slot of the
	// current master is carried forward at its existing position, and must
	// still have a backing file in the working directory. Partial commits
	// may not introduce new slots.
	PartialCommit
)

// CommitInput is the full input of one reconciliation call.
type CommitInput struct {
	Message    string
	Candidates []Candidate
	Mode       CommitMode

	// BackedTypes is the set of slot types that currently have a backing
	// file in the working directory. Only consulted for partial commits,
	// where it decides whether an untouched slot may be carried forward.
	BackedTypes map[string]bool

	// Branches maps a candidate type to the fragment id to branch from.
	// A branched slot gets Branch(parent.Version) instead of an increment,
	// and the named parent must exist and have the same type.
	Branches map[string]int64
}

// CommitResult describes the outcome of a commit. When NoOp is true nothing
// was written and Master is the unchanged current master, if any.
type CommitResult struct {
	NoOp      bool
	Master    Master
	Fragments []Fragment // new composition, in order
	Created   []Fragment // rows inserted by this commit
}

// UncommitResult describes a completed revert.
type UncommitResult struct {
	Reverted   Master  // the master row that was deleted
	Current    Master  // the master that is current again
	DeletedIDs []int64 // fragment rows removed with it
}

// DriftKind classifies one slot of the working directory against the
// current master.
type DriftKind string

const (
	DriftNew       DriftKind = "new"       // type not present in the current master
	DriftModified  DriftKind = "modified"  // backing file content differs from the slot's fragment
	DriftUnchanged DriftKind = "unchanged" // backing file matches the slot's fragment
	DriftMissing   DriftKind = "missing"   // slot has no backing file anymore
)

// Drift is the status of a single slot type.
type Drift struct {
	Type    string
	Kind    DriftKind
	Version Version // the slot's version in the current master, if any
}
