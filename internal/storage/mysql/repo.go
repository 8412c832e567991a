package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"smarttour/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertDestination(ctx context.Context, d domain.Destination) error {
	_, err := r.db.ExecContext(ctx, upsertDestinationSQL,
		d.Name,
		d.Category,
		d.State,
		valStr(d.Description),
		valF64(d.AvgRating),
		valF64(d.EstCost),
	)
	if err != nil {
		return fmt.Errorf("upsert destination %q: %w", d.Name, err)
	}
	return nil
}

func (r *Repo) UpsertRating(ctx context.Context, rt domain.Rating) error {
	if !rt.Valid() {
		return domain.ErrInvalidRating
	}
	_, err := r.db.ExecContext(ctx, upsertRatingSQL, rt.UserID, rt.Place, rt.Score)
	return err
}

func (r *Repo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	rows, err := r.db.QueryContext(ctx, listDestinationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Destination
	for rows.Next() {
		var d domain.Destination
		var desc sql.NullString
		var avg, cost sql.NullFloat64
		if err := rows.Scan(&d.Name, &d.Category, &d.State, &desc, &avg, &cost); err != nil {
			return nil, err
		}
		d.Description = desc.String
		if avg.Valid {
			f := avg.Float64
			d.AvgRating = &f
		}
		if cost.Valid {
			f := cost.Float64
			d.EstCost = &f
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListRatings(ctx context.Context) ([]domain.Rating, error) {
	rows, err := r.db.QueryContext(ctx, listRatingsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Rating
	for rows.Next() {
		var rt domain.Rating
		if err := rows.Scan(&rt.UserID, &rt.Place, &rt.Score); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
