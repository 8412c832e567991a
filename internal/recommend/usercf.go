package recommend

import (
	"math"
	"sort"

	"smarttour/internal/domain"
)

// UserCF is user-based collaborative filtering over explicit 1..5 ratings.
// Unrated cells count as 0 when computing user-user cosine similarity.
type UserCF struct {
	ratings map[string]map[string]float64 // user -> place -> score
	sim     map[string]map[string]float64 // user -> other user -> cosine
}

type Scored struct {
	Place string
	Score float64
}

func NewUserCF(rs []domain.Rating) *UserCF {
	m := &UserCF{ratings: map[string]map[string]float64{}, sim: map[string]map[string]float64{}}
	for _, r := range rs {
		u := m.ratings[r.UserID]
		if u == nil {
			u = map[string]float64{}
			m.ratings[r.UserID] = u
		}
		// later rows win, matching upsert semantics
		u[r.Place] = float64(r.Score)
	}

	norms := make(map[string]float64, len(m.ratings))
	for u, row := range m.ratings {
		var s float64
		for _, v := range row {
			s += v * v
		}
		norms[u] = math.Sqrt(s)
	}
	for u, ru := range m.ratings {
		m.sim[u] = map[string]float64{}
		for v, rv := range m.ratings {
			if u == v {
				continue
			}
			var d float64
			for p, x := range ru {
				d += x * rv[p]
			}
			if den := norms[u] * norms[v]; den > 0 {
				m.sim[u][v] = d / den
			}
		}
	}
	return m
}

func (m *UserCF) Known(user string) bool {
	_, ok := m.ratings[user]
	return ok
}

// Recommend scores every candidate the user has not rated as the
// similarity-weighted mean of other users' ratings, and returns the n best.
// Candidates no similar user has rated are skipped.
func (m *UserCF) Recommend(user string, candidates []string, n int) []Scored {
	mine, ok := m.ratings[user]
	if !ok {
		return nil
	}
	var out []Scored
	seen := map[string]bool{}
	for _, place := range candidates {
		if _, rated := mine[place]; rated || seen[place] {
			continue
		}
		seen[place] = true
		var total, wsum float64
		for other, s := range m.sim[user] {
			if r, ok := m.ratings[other][place]; ok {
				total += r * s
				wsum += s
			}
		}
		if wsum > 0 {
			out = append(out, Scored{Place: place, Score: total / wsum})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Place < out[j].Place
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
