package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"smarttour/internal/domain"
)

// Rate stores a rating for a catalog place, rebuilds the local collaborative model and tells the
// other replicas to do the same.
func (s *RecommendService) Rate(ctx context.Context, r domain.Rating) error {
	if !r.Valid() {
		return domain.ErrInvalidRating
	}
	if !s.inCatalog(r.Place) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPlace, r.Place)
	}
	if err := s.ratings.UpsertRating(ctx, r); err != nil {
		return fmt.Errorf("store rating: %w", err)
	}
	if err := s.ReloadRatings(ctx); err != nil {
		return err
	}
	s.announce(ctx, domain.ModelRatings)
	return nil
}

func (s *RecommendService) inCatalog(place string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.catalog {
		if d.Name == place {
			return true
		}
	}
	return false
}

// announce is best-effort: this replica is already current.
func (s *RecommendService) announce(ctx context.Context, kind domain.ModelKind) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, kind); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("model event publish failed")
	}
}

type SeedService struct {
	repo   domain.DestinationRepository
	events domain.ModelEvents // may be nil
}

func NewSeedService(r domain.DestinationRepository, ev domain.ModelEvents) *SeedService {
	return &SeedService{repo: r, events: ev}
}

// Seed upserts every destination with at most workers in flight. Failed rows
// are logged and counted; the catalog event is published when at least one
// row landed.
func (s *SeedService) Seed(ctx context.Context, ds []domain.Destination, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var ok, failed int64

	for _, d := range ds {
		d := d

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return int(ok), err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.repo.UpsertDestination(ctx, d); err != nil {
				atomic.AddInt64(&failed, 1)
				log.Warn().Str("name", d.Name).Err(err).Msg("seed failed")
				return
			}
			atomic.AddInt64(&ok, 1)
		}()
	}
	wg.Wait()

	if ok > 0 && s.events != nil {
		if err := s.events.Publish(ctx, domain.ModelCatalog); err != nil {
			log.Warn().Err(err).Msg("catalog event publish failed")
		}
	}
	if failed > 0 {
		return int(ok), fmt.Errorf("%d of %d destinations failed: %w", failed, len(ds), ErrSeedPartial)
	}
	return int(ok), nil
}

var ErrSeedPartial = errors.New("partial seed")
