package core

import "context"

// Uncommit reverts the current master to its parent: the current row is
// deleted, the parent becomes current again, and the fragments the undone
// commit introduced are removed. Defined only when a current master exists
// and has a parent; otherwise a state error, with nothing mutated.
//
// Deletion policy: a fragment of the undone master is removed when its type
// is absent from the previous master, or when its version is strictly later
// than the previous master's version for that type. Fragments the commit
// merely referenced from an older lineage keep their rows, unlike a raw
// id-set difference, which would delete them.
//
// Irreversible: once the rows are gone no later master can reference them.
// Confirmation is the caller's concern.
func (s *Service) Uncommit(ctx context.Context) (*UncommitResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := tx.CurrentMaster(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoCurrentMaster
	}
	if current.ParentID == nil {
		return nil, ErrNoPreviousMaster
	}
	previous, err := tx.MasterByID(ctx, *current.ParentID)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return nil, ErrNoPreviousMaster
	}

	currentFrags, err := tx.FragmentsByIDs(ctx, current.FragmentIDs)
	if err != nil {
		return nil, err
	}
	previousFrags, err := tx.FragmentsByIDs(ctx, previous.FragmentIDs)
	if err != nil {
		return nil, err
	}
	previousByType := make(map[string]Fragment, len(previousFrags))
	for _, f := range previousFrags {
		previousByType[f.Type] = f
	}

	var doomed []int64
	for _, f := range currentFrags {
		prev, ok := previousByType[f.Type]
		if !ok || f.Version.Greater(prev.Version) {
			doomed = append(doomed, f.ID)
		}
	}

	if err := tx.DeleteMaster(ctx, current.ID); err != nil {
		return nil, err
	}
	if err := tx.SetCurrentMaster(ctx, previous.ID); err != nil {
		return nil, err
	}
	if err := tx.DeleteFragments(ctx, doomed); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("reverted master",
		"from", current.ID, "to", previous.ID, "deleted_fragments", len(doomed))
	restored := *previous
	restored.IsCurrent = true
	return &UncommitResult{Reverted: *current, Current: restored, DeletedIDs: doomed}, nil
}
