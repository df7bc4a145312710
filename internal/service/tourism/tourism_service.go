package tourism

import (
	"context"
	"fmt"
	"github.com/ougirez/thaitourism/internal/domain"
	"github.com/ougirez/thaitourism/internal/domain/dto"
	"github.com/ougirez/thaitourism/internal/pipeline/display"
	"github.com/ougirez/thaitourism/internal/pipeline/loader"
	"github.com/ougirez/thaitourism/internal/pipeline/normalize"
	"github.com/ougirez/thaitourism/internal/pkg/logger"
	"github.com/ougirez/thaitourism/internal/pkg/store"
	"golang.org/x/sync/errgroup"
	"time"
)

type ForecastOptions struct {
	Alpha   float64
	Beta    float64
	Horizon int
}

type Options struct {
	Original loader.Source
	Cleansed loader.Source
	BaseYear domain.Year
	TopN     int
	Forecast ForecastOptions
}

type Service struct {
	store      store.Store
	loader     *loader.Loader
	normalizer *normalize.Normalizer
	formatter  *display.Formatter
	opts       Options
}

func NewService(
	store store.Store,
	loader *loader.Loader,
	normalizer *normalize.Normalizer,
	formatter *display.Formatter,
	opts Options,
) *Service {
	return &Service{
		store:      store,
		loader:     loader,
		normalizer: normalizer,
		formatter:  formatter,
		opts:       opts,
	}
}

func (s *Service) Formatter() *display.Formatter { return s.formatter }

// Reload loads both dataset variants concurrently, derives years and swaps the
// result into the store. The previous dataset stays in place on any error.
func (s *Service) Reload(ctx context.Context) (*dto.ReloadResult, error) {
	var (
		original       []domain.Record
		cleansed       []domain.WideRecord
		origSkipped    int
		cleanseSkipped int
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		records, err := s.loader.LoadLong(egCtx, s.opts.Original)
		if err != nil {
			return fmt.Errorf("loader.LoadLong: %w", err)
		}

		dated, skipped, err := s.normalizer.DeriveYear(records)
		if err != nil {
			return fmt.Errorf("normalizer.DeriveYear, original: %w", err)
		}
		for _, e := range skipped {
			logger.Warnf(egCtx, "original dataset: %s", e.Error())
		}

		original, origSkipped = dated, len(skipped)
		return nil
	})
	eg.Go(func() error {
		records, err := s.loader.LoadWide(egCtx, s.opts.Cleansed)
		if err != nil {
			return fmt.Errorf("loader.LoadWide: %w", err)
		}

		dated, skipped, err := s.normalizer.DeriveYearWide(records)
		if err != nil {
			return fmt.Errorf("normalizer.DeriveYearWide, cleansed: %w", err)
		}
		for _, e := range skipped {
			logger.Warnf(egCtx, "cleansed dataset: %s", e.Error())
		}

		cleansed, cleanseSkipped = dated, len(skipped)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}

	dataset := &store.Dataset{
		Original: original,
		Cleansed: cleansed,
		LoadedAt: time.Now(),
		Skipped:  origSkipped + cleanseSkipped,
	}
	s.store.Put(ctx, dataset)

	logger.Infof(ctx, "dataset loaded: %d original records, %d cleansed records, %d skipped",
		len(original), len(cleansed), dataset.Skipped)

	return &dto.ReloadResult{
		Original: len(original),
		Cleansed: len(cleansed),
		Skipped:  dataset.Skipped,
		LoadedAt: dataset.LoadedAt,
	}, nil
}
