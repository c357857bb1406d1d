package fixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// EntryStore is an in-memory repository.EntryRepository with the same
// (language, id) uniqueness as the Postgres store.
type EntryStore struct {
	mu      sync.Mutex
	rows    map[string]*entity.Entry
	order   []string
	inserts int
	err     error
}

var _ repository.EntryRepository = (*EntryStore)(nil)

// NewEntryStore returns an empty store.
func NewEntryStore() *EntryStore {
	return &EntryStore{rows: map[string]*entity.Entry{}}
}

func entryKey(lang, id string) string { return lang + "/" + id }

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *EntryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Inserts returns the number of successful inserts.
func (s *EntryStore) Inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

// Seed stores entries directly, bypassing duplicate checks and counters.
func (s *EntryStore) Seed(entries ...*entity.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		k := entryKey(e.Language, e.ID)
		if _, ok := s.rows[k]; !ok {
			s.order = append(s.order, k)
		}
		cp := *e
		s.rows[k] = &cp
	}
}

func (s *EntryStore) Get(_ context.Context, lang, id string) (*entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.rows[entryKey(lang, id)]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *EntryStore) Exists(_ context.Context, lang, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.rows[entryKey(lang, id)]
	return ok, nil
}

// List orders by published time descending, then id.
func (s *EntryStore) List(_ context.Context, lang string, offset, limit int) ([]*entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var matched []*entity.Entry
	for _, k := range s.order {
		if e := s.rows[k]; e.Language == lang {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].PublishedAt.Equal(matched[j].PublishedAt) {
			return matched[i].PublishedAt.After(matched[j].PublishedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if offset >= len(matched) {
		return []*entity.Entry{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *EntryStore) Count(_ context.Context, lang string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	for _, e := range s.rows {
		if e.Language == lang {
			n++
		}
	}
	return n, nil
}

func (s *EntryStore) Insert(_ context.Context, e *entity.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	k := entryKey(e.Language, e.ID)
	if _, ok := s.rows[k]; ok {
		return repository.ErrDuplicate
	}
	cp := *e
	s.rows[k] = &cp
	s.order = append(s.order, k)
	s.inserts++
	return nil
}

func (s *EntryStore) MarkIndexed(_ context.Context, lang, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	e, ok := s.rows[entryKey(lang, id)]
	if !ok {
		return entity.ErrNotFound
	}
	e.IndexedAt = &at
	return nil
}

// ListUnindexed returns outbox entries in insertion order.
func (s *EntryStore) ListUnindexed(_ context.Context, limit int) ([]*entity.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.unindexed(limit), nil
}

func (s *EntryStore) CountUnindexed(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.unindexed(len(s.order)))), nil
}

func (s *EntryStore) unindexed(limit int) []*entity.Entry {
	out := []*entity.Entry{}
	for _, k := range s.order {
		if len(out) >= limit {
			break
		}
		if e := s.rows[k]; e.IndexedAt == nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}
