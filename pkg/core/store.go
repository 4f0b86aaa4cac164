package core

import "context"

// NewFragment is the insertable part of a Fragment; the store assigns id
// and creation time.
type NewFragment struct {
	Type          string
	ParentID      *int64
	Version       Version
	Content       string
	CommitMessage string
}

// NewMaster is the insertable part of a Master. It is always inserted as
// the current master; the caller clears the previous current row first,
// inside the same transaction.
type NewMaster struct {
	ParentID      *int64
	Version       Version
	FragmentIDs   []int64
	CommitMessage string
}

// Queries is the read side of the store. Single-row lookups return
// (nil, nil) when no row matches.
type Queries interface {
	// FragmentByContent looks a fragment up by its exact content.
	FragmentByContent(ctx context.Context, content string) (*Fragment, error)

	// FragmentByID looks a fragment up by id.
	FragmentByID(ctx context.Context, id int64) (*Fragment, error)

	// FragmentsByIDs returns the fragments for ids in the requested order,
	// silently dropping ids that no longer exist.
	FragmentsByIDs(ctx context.Context, ids []int64) ([]Fragment, error)

	// CurrentMaster returns the master flagged current, if any.
	CurrentMaster(ctx context.Context) (*Master, error)

	// MasterByID looks a master up by id.
	MasterByID(ctx context.Context, id int64) (*Master, error)

	// Masters returns all masters, newest first.
	Masters(ctx context.Context) ([]Master, error)
}

// Mutations is the write side of the store. Only the Service uses it, and
// only inside a Tx.
type Mutations interface {
	// InsertFragment inserts a row and returns it with id and creation
	// time filled in. Returns ErrDuplicateContent if the content is
	// already stored.
	InsertFragment(ctx context.Context, f NewFragment) (*Fragment, error)

	// InsertMaster inserts a row flagged current and returns it. Returns
	// ErrDuplicateContent if an identical composition is already stored.
	InsertMaster(ctx context.Context, m NewMaster) (*Master, error)

	// ClearCurrentMaster drops the current flag, wherever it is.
	ClearCurrentMaster(ctx context.Context) error

	// SetCurrentMaster flags the given master current, clearing any other.
	SetCurrentMaster(ctx context.Context, id int64) error

	// DeleteMaster removes a master row.
	DeleteMaster(ctx context.Context, id int64) error

	// DeleteFragments removes fragment rows by id.
	DeleteFragments(ctx context.Context, ids []int64) error
}

// Tx is a unit of work. Commit and uncommit each run all of their reads and
// writes through one Tx so a failure leaves either the old state or the new
// state, never a mix.
type Tx interface {
	Queries
	Mutations

	Commit() error
	Rollback() error
}

// Store is the contract the persistence adapter implements. The core is
// independent of the storage mechanism behind it.
type Store interface {
	Queries

	Begin(ctx context.Context) (Tx, error)
}
