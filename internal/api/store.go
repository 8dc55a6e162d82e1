package api

import (
	"sync"

	"survival-sim/internal/scenario"
)

const defaultStoreCapacity = 50

// resultStore は直近の実行結果を保持する
// 容量を超えると古いものから捨てる
type resultStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	results  map[string]*scenario.Result
}

func newResultStore(capacity int) *resultStore {
	if capacity <= 0 {
		capacity = defaultStoreCapacity
	}
	return &resultStore{
		capacity: capacity,
		results:  make(map[string]*scenario.Result),
	}
}

func (s *resultStore) put(r *scenario.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.results[r.ID] = r

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.results, oldest)
	}
}

func (s *resultStore) get(id string) (*scenario.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	return r, ok
}

// list は新しい順に結果を返す
func (s *resultStore) list() []*scenario.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scenario.Result, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.results[s.order[i]])
	}
	return out
}

func (s *resultStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
