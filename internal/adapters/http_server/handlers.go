package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"smarttour/internal/app"
	"smarttour/internal/domain"
)

const maxJSONBody = 64 << 10

// Handlers serves the recommendation API.
type Handlers struct{ R *app.RecommendService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/recommend", h.recommend)
	s.mux.Get("/v1/destinations", h.listDestinations)
	s.mux.Post("/v1/ratings", h.rate)
	s.mux.Get("/v1/users/{user}/recommendations", h.forUser)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// recommend answers a preferences submission. Fields are not validated.
func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	var p domain.Preferences
	if !decodeJSON(w, r, &p) {
		return
	}
	out, err := h.R.Recommend(r.Context(), p)
	if err != nil {
		log.Error().Err(err).Msg("recommend failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "recommendation failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listDestinations(w http.ResponseWriter, r *http.Request) {
	etag, body := calcETagAndBody(listResponse[domain.Destination]{Items: nonNil(h.R.Destinations())})
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listDestinations body")
	}
}

func (h *Handlers) rate(w http.ResponseWriter, r *http.Request) {
	var rt domain.Rating
	if !decodeJSON(w, r, &rt) {
		return
	}
	rt.UserID, rt.Place = strings.TrimSpace(rt.UserID), strings.TrimSpace(rt.Place)
	if rt.UserID == "" || rt.Place == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid rating", "userId and place are required")
		return
	}
	if err := h.R.Rate(r.Context(), rt); err != nil {
		if errors.Is(err, domain.ErrInvalidRating) {
			writeProblem(w, http.StatusBadRequest, "Invalid rating", err.Error())
			return
		}
		if errors.Is(err, domain.ErrUnknownPlace) {
			writeProblem(w, http.StatusNotFound, "Unknown place", err.Error())
			return
		}
		log.Error().Err(err).Str("user", rt.UserID).Msg("rate failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "rating not stored")
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *Handlers) forUser(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	writeJSON(w, http.StatusOK, listResponse[domain.Destination]{Items: h.R.ForUser(r.Context(), user)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
