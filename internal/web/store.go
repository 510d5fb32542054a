package web

import (
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lunacore/luna/internal/domain"
	"github.com/lunacore/luna/internal/errors"
)

// Run is the server's view of one generation.
type Run struct {
	ID          string           `json:"run_id"`
	Status      domain.RunStatus `json:"status"`
	Brief       string           `json:"brief"`
	Template    domain.Template  `json:"template"`
	ProjectName string           `json:"project_name,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
	Result      *domain.Result   `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Done reports whether the run has finished, successfully or not.
func (r Run) Done() bool {
	return r.Status == domain.RunSuccess || r.Status == domain.RunError
}

// RunStore remembers the most recent runs. The oldest run is evicted once the
// store is full.
type RunStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Run]
}

// NewRunStore creates a store holding at most size runs.
func NewRunStore(size int) (*RunStore, error) {
	cache, err := lru.New[string, Run](size)
	if err != nil {
		return nil, errors.Wrap(err, "create run store")
	}
	return &RunStore{cache: cache}, nil
}

// Put adds or replaces a run.
func (s *RunStore) Put(r Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(r.ID, r)
}

// Get returns a run by ID.
func (s *RunStore) Get(id string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.cache.Get(id)
	if !ok {
		return Run{}, errors.ErrRunNotFound
	}
	return r, nil
}

// Update applies fn to a stored run. It returns ErrRunNotFound when the run
// was evicted.
func (s *RunStore) Update(id string, fn func(*Run)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.cache.Peek(id)
	if !ok {
		return errors.ErrRunNotFound
	}
	fn(&r)
	s.cache.Add(id, r)
	return nil
}

// List returns the stored runs, newest first, without file contents.
func (s *RunStore) List() []Run {
	s.mu.Lock()
	runs := s.cache.Values()
	s.mu.Unlock()

	for i := range runs {
		if runs[i].Result != nil {
			summary := *runs[i].Result
			summary.Files = nil
			runs[i].Result = &summary
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].SubmittedAt.After(runs[j].SubmittedAt) })
	return runs
}

// Len returns the number of stored runs.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
