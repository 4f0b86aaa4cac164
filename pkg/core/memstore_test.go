package core

import (
	"context"
	"fmt"
	"time"
)

// memStore is an in-memory Store used to exercise the reconciler without a
// database. Transactions are copy-on-write: a Tx mutates a snapshot and
// Commit swaps it in, so a failed commit leaves the store untouched.
type memStore struct {
	state memState
}

type memState struct {
	fragments    []Fragment
	masters      []Master
	nextFragment int64
	nextMaster   int64
}

func newMemStore() *memStore {
	return &memStore{state: memState{nextFragment: 1, nextMaster: 1}}
}

func (s *memState) clone() memState {
	out := memState{
		fragments:    make([]Fragment, len(s.fragments)),
		masters:      make([]Master, len(s.masters)),
		nextFragment: s.nextFragment,
		nextMaster:   s.nextMaster,
	}
	copy(out.fragments, s.fragments)
	for i, m := range s.masters {
		m.FragmentIDs = append([]int64(nil), m.FragmentIDs...)
		out.masters[i] = m
	}
	return out
}

func (s *memState) fragmentByContent(content string) *Fragment {
	for i := range s.fragments {
		if s.fragments[i].Content == content {
			f := s.fragments[i]
			return &f
		}
	}
	return nil
}

func (s *memState) fragmentByID(id int64) *Fragment {
	for i := range s.fragments {
		if s.fragments[i].ID == id {
			f := s.fragments[i]
			return &f
		}
	}
	return nil
}

func (s *memState) fragmentsByIDs(ids []int64) []Fragment {
	out := make([]Fragment, 0, len(ids))
	for _, id := range ids {
		if f := s.fragmentByID(id); f != nil {
			out = append(out, *f)
		}
	}
	return out
}

func (s *memState) currentMaster() *Master {
	for i := range s.masters {
		if s.masters[i].IsCurrent {
			m := s.masters[i]
			m.FragmentIDs = append([]int64(nil), m.FragmentIDs...)
			return &m
		}
	}
	return nil
}

func (s *memState) masterByID(id int64) *Master {
	for i := range s.masters {
		if s.masters[i].ID == id {
			m := s.masters[i]
			m.FragmentIDs = append([]int64(nil), m.FragmentIDs...)
			return &m
		}
	}
	return nil
}

func (s *memState) insertFragment(f NewFragment) (*Fragment, error) {
	if s.fragmentByContent(f.Content) != nil {
		return nil, ErrDuplicateContent
	}
	row := Fragment{
		ID:            s.nextFragment,
		Type:          f.Type,
		ParentID:      f.ParentID,
		Version:       f.Version,
		Content:       f.Content,
		CommitMessage: f.CommitMessage,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	s.nextFragment++
	s.fragments = append(s.fragments, row)
	return &row, nil
}

func (s *memState) insertMaster(m NewMaster) (*Master, error) {
	key := fmt.Sprint(m.FragmentIDs)
	for _, existing := range s.masters {
		if fmt.Sprint(existing.FragmentIDs) == key {
			return nil, ErrDuplicateContent
		}
		if existing.IsCurrent {
			return nil, fmt.Errorf("constraint: current master already set")
		}
	}
	row := Master{
		ID:            s.nextMaster,
		ParentID:      m.ParentID,
		Version:       m.Version,
		FragmentIDs:   append([]int64(nil), m.FragmentIDs...),
		IsCurrent:     true,
		CommitMessage: m.CommitMessage,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	s.nextMaster++
	s.masters = append(s.masters, row)
	return &row, nil
}

// Store side.

func (m *memStore) Begin(ctx context.Context) (Tx, error) {
	return &memTx{store: m, state: m.state.clone()}, nil
}

func (m *memStore) FragmentByContent(ctx context.Context, content string) (*Fragment, error) {
	return m.state.fragmentByContent(content), nil
}

func (m *memStore) FragmentByID(ctx context.Context, id int64) (*Fragment, error) {
	return m.state.fragmentByID(id), nil
}

func (m *memStore) FragmentsByIDs(ctx context.Context, ids []int64) ([]Fragment, error) {
	return m.state.fragmentsByIDs(ids), nil
}

func (m *memStore) CurrentMaster(ctx context.Context) (*Master, error) {
	return m.state.currentMaster(), nil
}

func (m *memStore) MasterByID(ctx context.Context, id int64) (*Master, error) {
	return m.state.masterByID(id), nil
}

func (m *memStore) Masters(ctx context.Context) ([]Master, error) {
	out := make([]Master, 0, len(m.state.masters))
	for i := len(m.state.masters) - 1; i >= 0; i-- {
		out = append(out, m.state.masters[i])
	}
	return out, nil
}

// Tx side.

type memTx struct {
	store *memStore
	state memState
	done  bool
}

func (t *memTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction closed")
	}
	t.store.state = t.state
	t.done = true
	return nil
}

func (t *memTx) Rollback() error {
	t.done = true
	return nil
}

func (t *memTx) FragmentByContent(ctx context.Context, content string) (*Fragment, error) {
	return t.state.fragmentByContent(content), nil
}

func (t *memTx) FragmentByID(ctx context.Context, id int64) (*Fragment, error) {
	return t.state.fragmentByID(id), nil
}

func (t *memTx) FragmentsByIDs(ctx context.Context, ids []int64) ([]Fragment, error) {
	return t.state.fragmentsByIDs(ids), nil
}

func (t *memTx) CurrentMaster(ctx context.Context) (*Master, error) {
	return t.state.currentMaster(), nil
}

func (t *memTx) MasterByID(ctx context.Context, id int64) (*Master, error) {
	return t.state.masterByID(id), nil
}

func (t *memTx) Masters(ctx context.Context) ([]Master, error) {
	out := make([]Master, 0, len(t.state.masters))
	for i := len(t.state.masters) - 1; i >= 0; i-- {
		out = append(out, t.state.masters[i])
	}
	return out, nil
}

func (t *memTx) InsertFragment(ctx context.Context, f NewFragment) (*Fragment, error) {
	return t.state.insertFragment(f)
}

func (t *memTx) InsertMaster(ctx context.Context, m NewMaster) (*Master, error) {
	return t.state.insertMaster(m)
}

func (t *memTx) ClearCurrentMaster(ctx context.Context) error {
	for i := range t.state.masters {
		t.state.masters[i].IsCurrent = false
	}
	return nil
}

func (t *memTx) SetCurrentMaster(ctx context.Context, id int64) error {
	for i := range t.state.masters {
		t.state.masters[i].IsCurrent = t.state.masters[i].ID == id
	}
	return nil
}

func (t *memTx) DeleteMaster(ctx context.Context, id int64) error {
	kept := t.state.masters[:0]
	for _, m := range t.state.masters {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	t.state.masters = kept
	return nil
}

func (t *memTx) DeleteFragments(ctx context.Context, ids []int64) error {
	doomed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	kept := t.state.fragments[:0]
	for _, f := range t.state.fragments {
		if !doomed[f.ID] {
			kept = append(kept, f)
		}
	}
	t.state.fragments = kept
	return nil
}

var (
	_ Store = (*memStore)(nil)
	_ Tx    = (*memTx)(nil)
)
