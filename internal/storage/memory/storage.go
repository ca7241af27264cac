package memory

import (
	"context"
	"sync"

	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	links     map[string]*model.Link
	dcidIndex map[string]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		links:     make(map[string]*model.Link),
		dcidIndex: make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveLink(ctx context.Context, link *model.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.links[link.GCID]; ok && old.DCID != "" && old.DCID != link.DCID {
		delete(s.dcidIndex, old.DCID)
	}
	stored := *link
	s.links[link.GCID] = &stored
	if link.DCID != "" {
		s.dcidIndex[link.DCID] = link.GCID
	}
	return nil
}

func (s *Storage) GetLink(ctx context.Context, gcid string) (*model.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[gcid]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	out := *link
	return &out, nil
}

func (s *Storage) UpdateLink(ctx context.Context, gcid string, fn func(*model.Link) error) (*model.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.links[gcid]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	updated := *current
	if err := fn(&updated); err != nil {
		return nil, err
	}
	s.links[gcid] = &updated
	out := updated
	return &out, nil
}

func (s *Storage) DeleteLink(ctx context.Context, gcid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link, ok := s.links[gcid]; ok && link.DCID != "" {
		delete(s.dcidIndex, link.DCID)
	}
	delete(s.links, gcid)
	return nil
}

func (s *Storage) LinkExists(ctx context.Context, gcid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[gcid]
	return ok, nil
}

func (s *Storage) GetLinkByDCID(ctx context.Context, dcid string) (*model.Link, error) {
	s.mu.RLock()
	gcid, ok := s.dcidIndex[dcid]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	return s.GetLink(ctx, gcid)
}

func (s *Storage) DCIDExists(ctx context.Context, dcid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dcidIndex[dcid]
	return ok, nil
}
