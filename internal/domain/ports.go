package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	ErrUnknownPlace  = errors.New("place is not in the catalog")
)

// Failure classes of a Recommender call.
var (
	ErrUnreachable    = errors.New("recommendation service unreachable")
	ErrUnavailable    = errors.New("recommendation service temporarily unavailable")
	ErrUpstreamStatus = errors.New("recommendation service returned an error status")
	ErrBadResponse    = errors.New("malformed recommendation response")
)

// Recommender is the remote endpoint the submission handler talks to.
type Recommender interface {
	Recommend(ctx context.Context, p Preferences) (Recommendations, error)
}

type DestinationRepository interface {
	UpsertDestination(ctx context.Context, d Destination) error
	ListDestinations(ctx context.Context) ([]Destination, error)
}

type RatingRepository interface {
	UpsertRating(ctx context.Context, r Rating) error
	ListRatings(ctx context.Context) ([]Rating, error)
}

// ModelEvents fans model-refresh notices out to every API replica.
type ModelEvents interface {
	Publish(ctx context.Context, kind ModelKind) error
}

type ModelKind string

const (
	ModelCatalog ModelKind = "catalog"
	ModelRatings ModelKind = "ratings"
)
