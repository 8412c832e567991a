package httpserver

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"smarttour/internal/app"
	"smarttour/internal/domain"
)

//go:embed assets
var assets embed.FS

var pages = template.Must(template.ParseFS(assets, "assets/page.html"))

const maxFormBody = 64 << 10

// Web serves the preferences page and its submission handler.
type Web struct {
	S         *app.SubmissionService
	RateLimit int // submissions per minute per IP, 0 disables
}

type pageData struct {
	Prefs    domain.Preferences
	Fragment template.HTML
}

func (s *Server) MountWeb(wb *Web) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", wb.index)
	s.mux.Get("/static/app.js", serveScript)

	if wb.RateLimit > 0 {
		s.mux.With(httprate.Limit(wb.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				wb.respond(w, r, http.StatusTooManyRequests, domain.Preferences{}, "error", "Too many submissions. Please wait a minute and try again.")
			}),
		)).Post("/recommendations", wb.submit)
		return
	}
	s.mux.Post("/recommendations", wb.submit)
}

func serveScript(w http.ResponseWriter, r *http.Request) {
	b, err := assets.ReadFile("assets/app.js")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(b)
}

func (wb *Web) index(w http.ResponseWriter, r *http.Request) {
	wb.writePage(w, http.StatusOK, pageData{})
}

// submit reads the two form fields as-is, asks the recommendation endpoint
// once and answers with markup for the #recommendations container.
func (wb *Web) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseMultipartForm(maxFormBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		status, msg := http.StatusBadRequest, "The form could not be read."
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status, msg = http.StatusRequestEntityTooLarge, "The form is too large."
		}
		log.Warn().Err(err).Int("status", status).Msg("reject form")
		wb.respond(w, r, status, domain.Preferences{}, "error", msg)
		return
	}
	p := domain.Preferences{
		TripType: r.PostFormValue("tripType"),
		Budget:   r.PostFormValue("budget"),
	}

	out, err := wb.S.Submit(r.Context(), p)
	if err != nil {
		status, msg := describe(err)
		wb.respond(w, r, status, p, "error", msg)
		return
	}
	wb.respond(w, r, http.StatusOK, p, "recommendations", out.Recommendations)
}

// respond writes just the fragment for script-driven submissions and the
// whole page otherwise.
func (wb *Web) respond(w http.ResponseWriter, r *http.Request, status int, p domain.Preferences, fragment string, data any) {
	frag, err := renderFragment(fragment, data)
	if err != nil {
		log.Error().Err(err).Str("template", fragment).Msg("render fragment failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	if r.Header.Get("X-Requested-With") == "fetch" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(frag))
		return
	}
	wb.writePage(w, status, pageData{Prefs: p, Fragment: frag})
}

func (wb *Web) writePage(w http.ResponseWriter, status int, d pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "page", d); err != nil {
		log.Error().Err(err).Msg("render page failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderRecommendations is the markup placed in the output container.
func RenderRecommendations(names []string) (string, error) {
	h, err := renderFragment("recommendations", names)
	return string(h), err
}

func renderFragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func describe(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "Recommendations are temporarily unavailable. Please try again in a moment."
	case errors.Is(err, domain.ErrUpstreamStatus):
		return http.StatusBadGateway, "The recommendation service returned an error."
	case errors.Is(err, domain.ErrBadResponse):
		return http.StatusBadGateway, "The recommendation service sent a response that could not be read."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The recommendation service took too long to answer."
	default:
		return http.StatusBadGateway, "The recommendation service could not be reached."
	}
}
