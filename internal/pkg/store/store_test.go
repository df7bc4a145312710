package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.Get(ctx); !errors.Is(err, constants.ErrDatasetNotLoaded) {
		t.Fatalf("empty store: got %v", err)
	}

	first := &Dataset{Cleansed: []domain.WideRecord{{Year: 2023}, {Year: 2019}, {Year: 2023}}}
	s.Put(ctx, first)

	got, err := s.Get(ctx)
	if err != nil || got != first {
		t.Fatalf("Get = %p, %v", got, err)
	}
	if years := got.Years(); !reflect.DeepEqual(years, []domain.Year{2019, 2023}) {
		t.Errorf("Years = %v", years)
	}

	second := &Dataset{}
	s.Put(ctx, second)
	if got, _ := s.Get(ctx); got != second {
		t.Error("Put did not replace the dataset")
	}
	if len(first.Cleansed) != 3 {
		t.Error("replaced dataset was modified")
	}
}
