package store

import (
	"context"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
	"sort"
	"sync"
	"time"
)

// Dataset is one loaded, normalized snapshot of both source variants. It is
// never mutated after Put.
type Dataset struct {
	Original []domain.Record
	Cleansed []domain.WideRecord
	LoadedAt time.Time
	Skipped  int
}

// Years returns the distinct years of the cleansed variant, ascending.
func (d *Dataset) Years() []domain.Year {
	seen := make(map[domain.Year]struct{})
	for _, r := range d.Cleansed {
		seen[r.Year] = struct{}{}
	}
	years := make([]domain.Year, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

type Store interface {
	Put(ctx context.Context, dataset *Dataset)
	Get(ctx context.Context) (*Dataset, error)
}

type store struct {
	mx      sync.RWMutex
	dataset *Dataset
}

func NewStore() Store {
	return &store{}
}

func (s *store) Put(_ context.Context, dataset *Dataset) {
	s.mx.Lock()
	defer s.mx.Unlock()

	s.dataset = dataset
}

func (s *store) Get(_ context.Context) (*Dataset, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	if s.dataset == nil {
		return nil, constants.ErrDatasetNotLoaded
	}
	return s.dataset, nil
}
