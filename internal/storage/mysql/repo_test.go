package mysql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"smarttour/internal/domain"
	mysqlrepo "smarttour/internal/storage/mysql"
)

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return mysqlrepo.New(db), mock
}

func TestRepo_UpsertDestination_NullsOptionalColumns(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO destinations").
		WithArgs("Petronas Towers", "city", "kuala lumpur", nil, nil, 120.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cost := 120.0
	err := repo.UpsertDestination(context.Background(), domain.Destination{
		Name: "Petronas Towers", Category: "city", State: "kuala lumpur", EstCost: &cost,
	})
	if err != nil {
		t.Fatalf("UpsertDestination: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepo_UpsertDestination_WrapsError(t *testing.T) {
	repo, mock := newMock(t)
	boom := errors.New("deadlock")
	mock.ExpectExec("INSERT INTO destinations").WillReturnError(boom)

	err := repo.UpsertDestination(context.Background(), domain.Destination{Name: "X", Category: "c", State: "s"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestRepo_UpsertRating(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("INSERT INTO ratings").
		WithArgs("alice", "Pantai Cenang", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertRating(context.Background(), domain.Rating{UserID: "alice", Place: "Pantai Cenang", Score: 4}); err != nil {
		t.Fatalf("UpsertRating: %v", err)
	}
	// out-of-range never reaches the database
	if err := repo.UpsertRating(context.Background(), domain.Rating{UserID: "alice", Place: "X", Score: 9}); !errors.Is(err, domain.ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepo_ListDestinations(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM destinations").
		WillReturnRows(sqlmock.NewRows([]string{"name", "category", "state", "description", "avg_rating", "est_cost"}).
			AddRow("Pantai Cenang", "beach", "kedah", "white sand", 4.5, 400.0).
			AddRow("Petronas Towers", "city", "kuala lumpur", nil, nil, nil))

	got, err := repo.ListDestinations(context.Background())
	if err != nil {
		t.Fatalf("ListDestinations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].AvgRating == nil || *got[0].AvgRating != 4.5 || got[0].EstCost == nil || *got[0].EstCost != 400 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].AvgRating != nil || got[1].EstCost != nil || got[1].Description != "" {
		t.Fatalf("NULL columns should map to zero values: %+v", got[1])
	}
}

func TestRepo_ListRatings(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM ratings").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "place_name", "rating"}).
			AddRow("alice", "A", 5).
			AddRow("bob", "A", 3))

	got, err := repo.ListRatings(context.Background())
	if err != nil {
		t.Fatalf("ListRatings: %v", err)
	}
	if len(got) != 2 || got[1].UserID != "bob" || got[1].Score != 3 {
		t.Fatalf("unexpected ratings: %+v", got)
	}
}
