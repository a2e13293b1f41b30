package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage keeps runs in a map. Runs are lost when the process exits.
type MemoryStorage struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{runs: make(map[string]*Run)}
}

func (s *MemoryStorage) Save(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return NewStorageError("memory", "save", errEmptyID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.clone()
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return run.clone(), nil
}

func (s *MemoryStorage) List(ctx context.Context, q Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		if q.matches(run) {
			matched = append(matched, run)
		}
	}
	newestFirst(matched)

	if q.Offset >= len(matched) {
		return []*Run{}, nil
	}
	matched = matched[q.Offset:]
	if n := q.limit(); len(matched) > n {
		matched = matched[:n]
	}

	out := make([]*Run, len(matched))
	for i, run := range matched {
		out[i] = run.clone()
	}
	return out, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, run := range s.runs {
		if run.StartedAt.Before(cutoff) {
			delete(s.runs, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) KeepLatest(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep < 0 || len(s.runs) <= keep {
		return 0, nil
	}

	all := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		all = append(all, run)
	}
	newestFirst(all)

	var n int64
	for _, run := range all[keep:] {
		delete(s.runs, run.ID)
		n++
	}
	return n, nil
}

func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.runs)), nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStorage) Close() error {
	return nil
}

// newestFirst orders by start time descending, then by ID for ties.
func newestFirst(runs []*Run) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}
