package app_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"smarttour/internal/app"
	"smarttour/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	dests   []domain.Destination
	ratings []domain.Rating
	failOn  string
	listErr error
}

func (f *fakeRepo) UpsertDestination(ctx context.Context, d domain.Destination) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.Name == f.failOn {
		return errors.New("constraint violation")
	}
	f.dests = append(f.dests, d)
	return nil
}
func (f *fakeRepo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return f.dests, f.listErr
}
func (f *fakeRepo) UpsertRating(ctx context.Context, r domain.Rating) error {
	f.ratings = append(f.ratings, r)
	return nil
}
func (f *fakeRepo) ListRatings(ctx context.Context) ([]domain.Rating, error) {
	return f.ratings, f.listErr
}

type fakeEvents struct {
	mu    sync.Mutex
	kinds []domain.ModelKind
	err   error
}

func (e *fakeEvents) Publish(ctx context.Context, k domain.ModelKind) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.kinds = append(e.kinds, k)
	return e.err
}

func pf(f float64) *float64 { return &f }

func seeded() *fakeRepo {
	return &fakeRepo{dests: []domain.Destination{
		{Name: "Pantai Cenang", Category: "beach", State: "kedah", AvgRating: pf(4.5), EstCost: pf(400)},
		{Name: "Perhentian Islands", Category: "beach", State: "terengganu", AvgRating: pf(4.8), EstCost: pf(900)},
		{Name: "Cameron Highlands", Category: "nature", State: "pahang", AvgRating: pf(4.6)},
	}}
}

// ---- tests ----

func TestRecommendService_EmptyBeforeReload(t *testing.T) {
	s := app.NewRecommendService(seeded(), &fakeRepo{}, nil, 5)
	out, err := s.Recommend(context.Background(), domain.Preferences{TripType: "beach"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out.Recommendations == nil || len(out.Recommendations) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", out.Recommendations)
	}
}

func TestRecommendService_RecommendAfterReload(t *testing.T) {
	s := app.NewRecommendService(seeded(), &fakeRepo{}, nil, 2)
	if err := s.ReloadCatalog(context.Background()); err != nil {
		t.Fatalf("ReloadCatalog: %v", err)
	}
	out, _ := s.Recommend(context.Background(), domain.Preferences{TripType: "beach", Budget: "500"})
	want := []string{"Pantai Cenang", "Cameron Highlands"}
	if !reflect.DeepEqual(out.Recommendations, want) {
		t.Fatalf("got %v want %v", out.Recommendations, want)
	}
	if n := len(s.Destinations()); n != 3 {
		t.Fatalf("Destinations: got %d", n)
	}
}

func TestRecommendService_ReloadErrorKeepsModel(t *testing.T) {
	repo := seeded()
	s := app.NewRecommendService(repo, &fakeRepo{}, nil, 5)
	_ = s.ReloadCatalog(context.Background())

	repo.listErr = errors.New("db down")
	if err := s.ReloadCatalog(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
	if n := len(s.Destinations()); n != 3 {
		t.Fatalf("previous catalog should survive a failed reload, got %d", n)
	}
}

func TestRecommendService_RateRebuildsAndAnnounces(t *testing.T) {
	ratings := &fakeRepo{ratings: []domain.Rating{
		{UserID: "bob", Place: "Pantai Cenang", Score: 5},
		{UserID: "bob", Place: "Cameron Highlands", Score: 2},
	}}
	ev := &fakeEvents{}
	s := app.NewRecommendService(seeded(), ratings, ev, 5)
	ctx := context.Background()
	_ = s.ReloadCatalog(ctx)

	if got := s.ForUser(ctx, "alice"); len(got) != 0 {
		t.Fatalf("unknown user should get nothing, got %+v", got)
	}
	if err := s.Rate(ctx, domain.Rating{UserID: "alice", Place: "Pantai Cenang", Score: 4}); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	got := s.ForUser(ctx, "alice")
	if len(got) != 1 || got[0].Name != "Cameron Highlands" || got[0].State != "pahang" {
		t.Fatalf("unexpected CF result: %+v", got)
	}
	if !reflect.DeepEqual(ev.kinds, []domain.ModelKind{domain.ModelRatings}) {
		t.Fatalf("expected one ratings event, got %v", ev.kinds)
	}
}

func TestRecommendService_RateRejectsOutOfRange(t *testing.T) {
	ratings := &fakeRepo{}
	s := app.NewRecommendService(seeded(), ratings, nil, 5)
	for _, score := range []int{0, 6} {
		err := s.Rate(context.Background(), domain.Rating{UserID: "alice", Place: "X", Score: score})
		if !errors.Is(err, domain.ErrInvalidRating) {
			t.Fatalf("score %d: expected ErrInvalidRating, got %v", score, err)
		}
	}
	if len(ratings.ratings) != 0 {
		t.Fatalf("invalid ratings must not be stored")
	}
}

func TestRecommendService_RateRejectsUnknownPlace(t *testing.T) {
	ratings := &fakeRepo{}
	ev := &fakeEvents{}
	s := app.NewRecommendService(seeded(), ratings, ev, 5)
	_ = s.ReloadCatalog(context.Background())

	err := s.Rate(context.Background(), domain.Rating{UserID: "alice", Place: "Atlantis", Score: 4})
	if !errors.Is(err, domain.ErrUnknownPlace) {
		t.Fatalf("expected ErrUnknownPlace, got %v", err)
	}
	if len(ratings.ratings) != 0 || len(ev.kinds) != 0 {
		t.Fatalf("unknown place must not be stored or announced")
	}
}

func TestRecommendService_PublishFailureIsNotFatal(t *testing.T) {
	s := app.NewRecommendService(seeded(), &fakeRepo{}, &fakeEvents{err: errors.New("redis down")}, 5)
	_ = s.ReloadCatalog(context.Background())
	if err := s.Rate(context.Background(), domain.Rating{UserID: "a", Place: "Pantai Cenang", Score: 3}); err != nil {
		t.Fatalf("Rate should succeed without redis: %v", err)
	}
}

func TestRecommendService_HandleEvent(t *testing.T) {
	repo := seeded()
	s := app.NewRecommendService(repo, &fakeRepo{}, nil, 5)
	s.HandleEvent(context.Background(), domain.ModelCatalog)
	if n := len(s.Destinations()); n != 3 {
		t.Fatalf("catalog event should reload, got %d", n)
	}
	s.HandleEvent(context.Background(), domain.ModelKind("bogus")) // ignored
}

func TestSeedService_Seed(t *testing.T) {
	repo := &fakeRepo{failOn: "Broken"}
	ev := &fakeEvents{}
	ds := []domain.Destination{{Name: "A"}, {Name: "B"}, {Name: "Broken"}, {Name: "C"}}

	n, err := app.NewSeedService(repo, ev).Seed(context.Background(), ds, 2)
	if n != 3 {
		t.Fatalf("expected 3 seeded, got %d", n)
	}
	if !errors.Is(err, app.ErrSeedPartial) || !strings.Contains(err.Error(), "1 of 4") {
		t.Fatalf("expected partial seed error, got %v", err)
	}
	if len(ev.kinds) != 1 || ev.kinds[0] != domain.ModelCatalog {
		t.Fatalf("expected catalog event, got %v", ev.kinds)
	}
}

func TestSeedService_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := &fakeEvents{}
	n, err := app.NewSeedService(&fakeRepo{}, ev).Seed(ctx, []domain.Destination{{Name: "A"}}, 1)
	if err == nil || n != 0 {
		t.Fatalf("expected context error, got n=%d err=%v", n, err)
	}
	if len(ev.kinds) != 0 {
		t.Fatalf("nothing seeded, nothing announced")
	}
}
