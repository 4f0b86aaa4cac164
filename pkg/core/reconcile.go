package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Service is the business logic over a Store: commit reconciliation,
// uncommit, and the read operations the CLI surfaces. It is the single
// writer; every multi-step mutation runs inside one store transaction.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger}
}

// Commit reconciles the working set against the current master and, unless
// the result is a no-op, writes a new master flagged current.
//
// Per candidate: content already in the store is reused as-is; otherwise a
// new fragment is inserted, versioned by incrementing the slot's version in
// the current master, or by branching from an explicitly named parent. The
// new master's version branches when any slot branched, and increments
// otherwise.
func (s *Service) Commit(ctx context.Context, in CommitInput) (*CommitResult, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, Validationf("commit message is required")
	}
	if err := rejectDuplicateTypes(in.Candidates); err != nil {
		return nil, err
	}
	if err := rejectUnmatchedBranches(in); err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := tx.CurrentMaster(ctx)
	if err != nil {
		return nil, err
	}

	var currentFrags []Fragment
	currentByType := make(map[string]Fragment)
	if current != nil {
		currentFrags, err = tx.FragmentsByIDs(ctx, current.FragmentIDs)
		if err != nil {
			return nil, err
		}
		for _, f := range currentFrags {
			if _, dup := currentByType[f.Type]; dup {
				return nil, reconcilef("current master has duplicate slot type %q", f.Type)
			}
			currentByType[f.Type] = f
		}
	}

	// Partial-commit policy. On the first commit there is no composition
	// to merge against, so the mode is irrelevant.
	if current != nil && in.Mode == PartialCommit {
		for _, c := range in.Candidates {
			if _, ok := currentByType[c.Type]; !ok {
				return nil, reconcilef(
					"partial commit cannot add new slot type %q; use a full commit to add or remove slots", c.Type)
			}
		}
		committed := candidateTypes(in.Candidates)
		for _, f := range currentFrags {
			if committed[f.Type] {
				continue
			}
			if !in.BackedTypes[f.Type] {
				return nil, reconcilef(
					"missing file for type %q: slots carried forward by a partial commit must keep a backing file", f.Type)
			}
		}
	}

	resolved := make(map[string]Fragment, len(in.Candidates))
	var created []Fragment
	for _, c := range in.Candidates {
		existing, err := tx.FragmentByContent(ctx, c.Content)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			resolved[c.Type] = *existing
			continue
		}

		var parentID *int64
		var parentVersion Version
		if prior, ok := currentByType[c.Type]; ok {
			id := prior.ID
			parentID = &id
			parentVersion = prior.Version
		}

		var version Version
		if branchFrom, ok := in.Branches[c.Type]; ok {
			parent, err := tx.FragmentByID(ctx, branchFrom)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return nil, reconcilef("branch parent fragment %d not found", branchFrom)
			}
			if parent.Type != c.Type {
				return nil, reconcilef("branch parent %d has type %q, expected %q",
					branchFrom, parent.Type, c.Type)
			}
			id := parent.ID
			parentID = &id
			version = parent.Version.Branch()
		} else {
			version = parentVersion.Increment()
		}

		frag, err := tx.InsertFragment(ctx, NewFragment{
			Type:          c.Type,
			ParentID:      parentID,
			Version:       version,
			Content:       c.Content,
			CommitMessage: in.Message,
		})
		if err != nil {
			return nil, err
		}
		resolved[c.Type] = *frag
		created = append(created, *frag)
	}

	// Compose the new ordered slot list. A full commit (and the first
	// commit) follows the working set's order; a partial commit keeps the
	// current master's order, replacing updated slots in place.
	var order []string
	if current == nil || in.Mode == FullCommit {
		for _, c := range in.Candidates {
			order = append(order, c.Type)
		}
	} else {
		for _, f := range currentFrags {
			order = append(order, f.Type)
		}
	}

	newIDs := make([]int64, 0, len(order))
	composition := make([]Fragment, 0, len(order))
	for _, t := range order {
		f, ok := resolved[t]
		if !ok {
			f = currentByType[t] // carried forward, partial mode only
		}
		newIDs = append(newIDs, f.ID)
		composition = append(composition, f)
	}

	if len(newIDs) == 0 {
		s.log.Debug("nothing to commit: empty working set")
		return &CommitResult{NoOp: true}, nil
	}
	if len(created) == 0 && current != nil && equalIDs(newIDs, current.FragmentIDs) {
		s.log.Debug("nothing to commit: composition unchanged", "master", current.ID)
		return &CommitResult{NoOp: true, Master: *current, Fragments: composition}, nil
	}

	var masterVersion Version
	var parentID *int64
	if current == nil {
		masterVersion = Version("").Increment()
	} else {
		branched := false
		for _, f := range composition {
			if old, ok := currentByType[f.Type]; ok && f.Version.IsBranchOf(old.Version) {
				branched = true
				break
			}
		}
		if branched {
			masterVersion = current.Version.Branch()
		} else {
			masterVersion = current.Version.Increment()
		}
		id := current.ID
		parentID = &id
		if err := tx.ClearCurrentMaster(ctx); err != nil {
			return nil, err
		}
	}

	master, err := tx.InsertMaster(ctx, NewMaster{
		ParentID:      parentID,
		Version:       masterVersion,
		FragmentIDs:   newIDs,
		CommitMessage: in.Message,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.log.Info("committed master",
		"id", master.ID, "version", master.Version.String(),
		"slots", len(newIDs), "new_fragments", len(created))
	return &CommitResult{Master: *master, Fragments: composition, Created: created}, nil
}

// Snapshot resolves a master and its composition. A zero id means the
// current master; ErrNoCurrentMaster when there is none. A nonzero id that
// matches no row is a state error as well.
func (s *Service) Snapshot(ctx context.Context, masterID int64) (*Master, []Fragment, error) {
	var master *Master
	var err error
	if masterID == 0 {
		master, err = s.store.CurrentMaster(ctx)
		if err != nil {
			return nil, nil, err
		}
		if master == nil {
			return nil, nil, ErrNoCurrentMaster
		}
	} else {
		master, err = s.store.MasterByID(ctx, masterID)
		if err != nil {
			return nil, nil, err
		}
		if master == nil {
			return nil, nil, fmt.Errorf("master %d: %w", masterID, ErrMasterNotFound)
		}
	}

	frags, err := s.store.FragmentsByIDs(ctx, master.FragmentIDs)
	if err != nil {
		return nil, nil, err
	}
	return master, frags, nil
}

// History returns every master, newest first.
func (s *Service) History(ctx context.Context) ([]Master, error) {
	return s.store.Masters(ctx)
}

// Status classifies the working set against the current master, candidate
// order first, then current slots with no backing file in master order.
// With no current master every candidate is new.
func (s *Service) Status(ctx context.Context, candidates []Candidate) ([]Drift, error) {
	current, err := s.store.CurrentMaster(ctx)
	if err != nil {
		return nil, err
	}

	currentByType := make(map[string]Fragment)
	var currentFrags []Fragment
	if current != nil {
		currentFrags, err = s.store.FragmentsByIDs(ctx, current.FragmentIDs)
		if err != nil {
			return nil, err
		}
		for _, f := range currentFrags {
			// Same corruption Commit refuses to reconcile against.
			if _, dup := currentByType[f.Type]; dup {
				return nil, reconcilef("current master has duplicate slot type %q", f.Type)
			}
			currentByType[f.Type] = f
		}
	}

	var drifts []Drift
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.Type] = true
		slot, ok := currentByType[c.Type]
		switch {
		case !ok:
			drifts = append(drifts, Drift{Type: c.Type, Kind: DriftNew})
		case slot.Content == c.Content:
			drifts = append(drifts, Drift{Type: c.Type, Kind: DriftUnchanged, Version: slot.Version})
		default:
			drifts = append(drifts, Drift{Type: c.Type, Kind: DriftModified, Version: slot.Version})
		}
	}
	for _, f := range currentFrags {
		if !seen[f.Type] {
			drifts = append(drifts, Drift{Type: f.Type, Kind: DriftMissing, Version: f.Version})
		}
	}
	return drifts, nil
}

func rejectDuplicateTypes(candidates []Candidate) error {
	names := make(map[string][]string)
	for _, c := range candidates {
		names[c.Type] = append(names[c.Type], c.Name)
	}
	var dups []string
	for t, ns := range names {
		if len(ns) > 1 {
			dups = append(dups, fmt.Sprintf("%s (%s)", t, strings.Join(ns, ", ")))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return Validationf("multiple files with the same slot type in commit: %s", strings.Join(dups, "; "))
}

// rejectUnmatchedBranches fails a commit whose branch directives name slot
// types that are not part of the candidate set. The resolution loop only
// consults Branches for committed types, so an unmatched directive would
// otherwise be dropped without a trace.
func rejectUnmatchedBranches(in CommitInput) error {
	if len(in.Branches) == 0 {
		return nil
	}
	types := candidateTypes(in.Candidates)
	var orphaned []string
	for t := range in.Branches {
		if !types[t] {
			orphaned = append(orphaned, t)
		}
	}
	if len(orphaned) == 0 {
		return nil
	}
	sort.Strings(orphaned)
	return Validationf("branch directive for slot type %s matches no file in this commit",
		strings.Join(orphaned, ", "))
}

func candidateTypes(candidates []Candidate) map[string]bool {
	types := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		types[c.Type] = true
	}
	return types
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
