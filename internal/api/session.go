package api

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"fleetdash/internal/engine"
)

// ErrStaleDataset means a request was built against a dataset that has since
// been replaced.
var ErrStaleDataset = errors.New("dataset changed since the request was built")

// Session holds the dashboard state shared by all requests: the standardized
// dataset and the filtered view applied to it. Datasets are never mutated
// after they are stored, so snapshots can be read without holding the lock.
type Session struct {
	mu       sync.RWMutex
	id       string
	data     *engine.Dataset
	view     *engine.Dataset
	criteria engine.Criteria
}

func NewSession() *Session {
	return &Session{}
}

// Snapshot is a consistent read of the session.
type Snapshot struct {
	ID       string
	Data     *engine.Dataset
	View     *engine.Dataset
	Criteria engine.Criteria
}

// Active is the filtered view when one is applied, otherwise the full dataset.
func (s Snapshot) Active() *engine.Dataset {
	if s.View != nil {
		return s.View
	}
	return s.Data
}

// Load replaces the dataset, drops any view and returns the new dataset id.
func (s *Session) Load(ds *engine.Dataset) string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id, s.data, s.view, s.criteria = id, ds, nil, engine.Criteria{}
	return id
}

// Reset forgets the dataset.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id, s.data, s.view, s.criteria = "", nil, nil, engine.Criteria{}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{ID: s.id, Data: s.data, View: s.view, Criteria: s.criteria}
}

// SetView stores a filtered view computed from dataset id.
func (s *Session) SetView(id string, c engine.Criteria, view *engine.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return engine.ErrNoDataset
	}
	if id != s.id {
		return ErrStaleDataset
	}
	s.view, s.criteria = view, c
	return nil
}

// ClearView makes the full dataset active again.
func (s *Session) ClearView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view, s.criteria = nil, engine.Criteria{}
}
