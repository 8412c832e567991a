package app_test

import (
	"context"
	"errors"
	"testing"

	"smarttour/internal/app"
	"smarttour/internal/domain"
)

type stubRecommender struct {
	got  []domain.Preferences
	resp domain.Recommendations
	err  error
}

func (s *stubRecommender) Recommend(ctx context.Context, p domain.Preferences) (domain.Recommendations, error) {
	s.got = append(s.got, p)
	return s.resp, s.err
}

func TestSubmissionService_ForwardsUnchanged(t *testing.T) {
	rec := &stubRecommender{resp: domain.Recommendations{Recommendations: []string{"Bali"}}}
	svc := app.NewSubmissionService(rec)

	in := domain.Preferences{TripType: "  <beach> ", Budget: ""}
	out, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(rec.got) != 1 || rec.got[0] != in {
		t.Fatalf("preferences must be forwarded as-is, got %+v", rec.got)
	}
	if len(out.Recommendations) != 1 || out.Recommendations[0] != "Bali" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestSubmissionService_SurfacesError(t *testing.T) {
	boom := errors.New("upstream exploded")
	svc := app.NewSubmissionService(&stubRecommender{err: boom})
	if _, err := svc.Submit(context.Background(), domain.Preferences{}); !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
