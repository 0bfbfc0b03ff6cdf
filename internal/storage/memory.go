package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"stackgp/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	order       []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.order = nil
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if run.ID == "" {
		return errors.New("run id is required")
	}
	if _, ok := s.runs[run.ID]; !ok {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type indexedRun struct {
		run model.RunRecord
		idx int
	}
	indexed := make([]indexedRun, 0, len(s.order))
	for i, id := range s.order {
		indexed = append(indexed, indexedRun{run: s.runs[id], idx: i})
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].run.CreatedAt.Equal(indexed[j].run.CreatedAt) {
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].run.CreatedAt.After(indexed[j].run.CreatedAt)
	})
	if limit > 0 && len(indexed) > limit {
		indexed = indexed[:limit]
	}

	out := make([]model.RunRecord, 0, len(indexed))
	for _, item := range indexed {
		out = append(out, cloneRun(item.run))
	}
	return out, nil
}

func cloneRun(run model.RunRecord) model.RunRecord {
	run.Best = append([]float32(nil), run.Best...)
	run.Average = append([]float32(nil), run.Average...)
	run.Worst = append([]float32(nil), run.Worst...)
	return run
}
