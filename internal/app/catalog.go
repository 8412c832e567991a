package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"smarttour/internal/domain"
)

// header aliases seen across the attraction spreadsheets
var columnAliases = map[string][]string{
	"name":        {"name", "place_name", "attraction", "destination"},
	"category":    {"category", "type", "trip_type"},
	"state":       {"state", "region"},
	"description": {"description", "desc"},
	"avg_rating":  {"avg_rating", "rating", "average_rating"},
	"est_cost":    {"est_cost", "cost", "budget", "price"},
}

var ErrMissingColumn = errors.New("catalog: required column missing")

// normalizeHeader lower-cases and snake-cases a spreadsheet header.
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func columnIndex(header []string) map[string]int {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[normalizeHeader(h)] = i
	}
	idx := map[string]int{}
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				idx[field] = i
				break
			}
		}
	}
	return idx
}

func parseOptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseCatalogCSV reads the attraction sheet. Rows missing a name, category,
// state or a numeric average rating are dropped; category and state are
// trimmed and lower-cased.
func ParseCatalogCSV(r io.Reader) ([]domain.Destination, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog header: %w", err)
	}
	idx := columnIndex(header)
	for _, req := range []string{"name", "category", "state", "avg_rating"} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}

	get := func(rec []string, field string) string {
		i, ok := idx[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []domain.Destination
	seen := map[string]int{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: %w", line, err)
		}
		d := domain.Destination{
			Name:        get(rec, "name"),
			Category:    strings.ToLower(get(rec, "category")),
			State:       strings.ToLower(get(rec, "state")),
			Description: get(rec, "description"),
			AvgRating:   parseOptFloat(get(rec, "avg_rating")),
			EstCost:     parseOptFloat(get(rec, "est_cost")),
		}
		if d.Name == "" || d.Category == "" || d.State == "" || d.AvgRating == nil {
			log.Debug().Int("line", line).Msg("skip incomplete catalog row")
			continue
		}
		// names are unique in storage; last row wins
		if i, dup := seen[d.Name]; dup {
			out[i] = d
			continue
		}
		seen[d.Name] = len(out)
		out = append(out, d)
	}
	return out, nil
}
