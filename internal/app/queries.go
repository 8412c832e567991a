package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"smarttour/internal/adapters/observability"
	"smarttour/internal/domain"
	"smarttour/internal/recommend"
)

// RecommendService owns the in-memory models. Reloads build a fresh model
// from storage and swap it in under the lock.
type RecommendService struct {
	dests   domain.DestinationRepository
	ratings domain.RatingRepository
	events  domain.ModelEvents // may be nil
	topN    int

	mu      sync.RWMutex
	catalog []domain.Destination
	content *recommend.Content
	cf      *recommend.UserCF
}

func NewRecommendService(d domain.DestinationRepository, r domain.RatingRepository, ev domain.ModelEvents, topN int) *RecommendService {
	if topN <= 0 {
		topN = 5
	}
	return &RecommendService{
		dests:   d,
		ratings: r,
		events:  ev,
		topN:    topN,
		content: recommend.NewContent(nil),
		cf:      recommend.NewUserCF(nil),
	}
}

func (s *RecommendService) ReloadCatalog(ctx context.Context) error {
	ds, err := s.dests.ListDestinations(ctx)
	observability.ObserveRebuild(string(domain.ModelCatalog), err)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	m := recommend.NewContent(ds)
	s.mu.Lock()
	s.catalog, s.content = ds, m
	s.mu.Unlock()
	log.Info().Int("destinations", len(ds)).Msg("content model rebuilt")
	return nil
}

func (s *RecommendService) ReloadRatings(ctx context.Context) error {
	rs, err := s.ratings.ListRatings(ctx)
	observability.ObserveRebuild(string(domain.ModelRatings), err)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	m := recommend.NewUserCF(rs)
	s.mu.Lock()
	s.cf = m
	s.mu.Unlock()
	log.Info().Int("ratings", len(rs)).Msg("collaborative model rebuilt")
	return nil
}

// HandleEvent is the subscriber callback for model-refresh notices.
func (s *RecommendService) HandleEvent(ctx context.Context, kind domain.ModelKind) {
	var err error
	switch kind {
	case domain.ModelCatalog:
		err = s.ReloadCatalog(ctx)
	case domain.ModelRatings:
		err = s.ReloadRatings(ctx)
	default:
		log.Warn().Str("kind", string(kind)).Msg("unknown model event")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("model reload failed")
	}
}

// Recommend is the content-based answer to a preferences submission.
func (s *RecommendService) Recommend(_ context.Context, p domain.Preferences) (domain.Recommendations, error) {
	s.mu.RLock()
	m := s.content
	s.mu.RUnlock()

	ranked := m.Rank(p, s.topN)
	out := domain.Recommendations{Recommendations: make([]string, 0, len(ranked))}
	for _, d := range ranked {
		out.Recommendations = append(out.Recommendations, d.Name)
	}
	return out, nil
}

// ForUser runs collaborative filtering for one user. Unknown users get an
// empty list.
func (s *RecommendService) ForUser(_ context.Context, user string) []domain.Destination {
	s.mu.RLock()
	cf, catalog := s.cf, s.catalog
	s.mu.RUnlock()

	byName := make(map[string]domain.Destination, len(catalog))
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		byName[d.Name] = d
		names = append(names, d.Name)
	}
	scored := cf.Recommend(user, names, s.topN)
	out := make([]domain.Destination, 0, len(scored))
	for _, sc := range scored {
		out = append(out, byName[sc.Place])
	}
	return out
}

func (s *RecommendService) Destinations() []domain.Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Destination(nil), s.catalog...)
}
