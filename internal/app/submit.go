package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"smarttour/internal/domain"
)

// SubmissionService forwards a preferences form to the recommendation
// endpoint. Field values are passed through untouched.
type SubmissionService struct {
	rec domain.Recommender
}

func NewSubmissionService(r domain.Recommender) *SubmissionService {
	return &SubmissionService{rec: r}
}

func (s *SubmissionService) Submit(ctx context.Context, p domain.Preferences) (domain.Recommendations, error) {
	start := time.Now()
	out, err := s.rec.Recommend(ctx, p)
	if err != nil {
		log.Warn().Err(err).
			Str("trip_type", p.TripType).
			Str("budget", p.Budget).
			Dur("duration", time.Since(start)).
			Msg("recommendation request failed")
		return domain.Recommendations{}, err
	}
	log.Debug().Int("count", len(out.Recommendations)).Dur("duration", time.Since(start)).Msg("recommendations received")
	return out, nil
}
