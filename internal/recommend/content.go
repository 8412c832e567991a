package recommend

import (
	"sort"
	"strconv"
	"strings"

	"smarttour/internal/domain"
)

// Content ranks catalog entries against trip preferences by TF-IDF cosine
// similarity over category, state and description.
type Content struct {
	dests []domain.Destination
	tfidf *TFIDF
}

func NewContent(dests []domain.Destination) *Content {
	docs := make([]string, len(dests))
	for i, d := range dests {
		docs[i] = d.Category + " " + d.State + " " + d.Description
	}
	cp := append([]domain.Destination(nil), dests...)
	return &Content{dests: cp, tfidf: FitTFIDF(docs)}
}

func (c *Content) Len() int { return len(c.dests) }

// Rank returns at most n destinations. A numeric budget drops entries whose
// known cost exceeds it; any other budget text joins the query.
func (c *Content) Rank(p domain.Preferences, n int) []domain.Destination {
	query := p.TripType
	limit, numeric := ParseBudget(p.Budget)
	if !numeric {
		query += " " + p.Budget
	}
	sims := c.tfidf.Similarities(query)

	idx := make([]int, 0, len(c.dests))
	for i, d := range c.dests {
		if numeric && d.EstCost != nil && *d.EstCost > limit {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := idx[a], idx[b]
		if sims[i] != sims[j] {
			return sims[i] > sims[j]
		}
		ri, rj := rating(c.dests[i]), rating(c.dests[j])
		if ri != rj {
			return ri > rj
		}
		return c.dests[i].Name < c.dests[j].Name
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	out := make([]domain.Destination, len(idx))
	for k, i := range idx {
		out[k] = c.dests[i]
	}
	return out
}

// ParseBudget accepts "500", "1,200.50" and ringgit-prefixed forms like "RM 300".
func ParseBudget(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "rm"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

func rating(d domain.Destination) float64 {
	if d.AvgRating == nil {
		return 0
	}
	return *d.AvgRating
}
