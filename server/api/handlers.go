// Package api implements the REST surface a day-view shell talks to.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/timeflowapp/timeflow/app"
	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/task"
	"github.com/timeflowapp/timeflow/timeline"
)

// Planner is the mutating surface of the application core.
type Planner interface {
	SaveTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, instanceID string) error
	ToggleComplete(ctx context.Context, instanceID string) error
	UpdateSetting(ctx context.Context, key string, value any) error
	SuggestTitles(query string) ([]string, error)
}

// Handlers bundles all REST API handler dependencies. Reads go straight
// to the store; writes funnel through the Planner so every mutation
// also updates the schedule and other instances.
type Handlers struct {
	Store   task.Store
	Planner Planner
	Logger  *slog.Logger
	Locale  language.Tag     // display locale for day labels
	Now     func() time.Time // clock source, nil means time.Now
	Version string
	StartAt int64 // unix timestamp of server start
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tasks", h.listTasks)
	mux.HandleFunc("POST /api/tasks", h.createTask)
	mux.HandleFunc("GET /api/tasks/{id}", h.getTask)
	mux.HandleFunc("PUT /api/tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.deleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", h.toggleTask)

	mux.HandleFunc("GET /api/titles", h.suggestTitles)
	mux.HandleFunc("GET /api/day", h.dayInfo)
	mux.HandleFunc("GET /api/layout", h.dayLayout)

	mux.HandleFunc("GET /api/settings", h.getSettings)
	mux.HandleFunc("PUT /api/settings", h.updateSettings)

	mux.HandleFunc("GET /api/status", h.status)
	mux.HandleFunc("GET /api/version", h.version)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps core errors onto HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	var verr *task.ValidationError
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, task.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Task handlers ---

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	date := clock.Today()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := clock.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: "+s)
			return
		}
		date = d
	}

	occs, err := h.Store.TasksByDate(date)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if occs == nil {
		occs = []task.Occurrence{}
	}
	writeJSON(w, http.StatusOK, occs)
}

func (h *Handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	t.ID = ""
	if err := h.Planner.SaveTask(r.Context(), &t); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.Task(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.Store.Task(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// Decode partial update over the existing task
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	existing.ID = id // ensure ID is not overwritten

	if err := h.Planner.SaveTask(r.Context(), existing); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (h *Handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) toggleTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.ToggleComplete(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Title suggestions ---

func (h *Handlers) suggestTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.Planner.SuggestTitles(r.URL.Query().Get("q"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, titles)
}

// dayInfo resolves the header labels for a date in the configured
// locale, plus the deep-link fragment (empty when the date is today).
func (h *Handlers) dayInfo(w http.ResponseWriter, r *http.Request) {
	today := clock.DateOf(h.now())
	date := today
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := clock.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: "+s)
			return
		}
		date = d
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"date":      date.String(),
		"label":     clock.FormatDate(date, today, h.Locale),
		"longLabel": clock.FormatDateLong(date, h.Locale),
		"fragment":  app.Fragment(date, today),
	})
}

// dayLayout computes the rendered geometry for a date at the stored
// timeline density: positioned cards, reminder indicators, countdown
// lines, and the now line. Indicators and lines only apply to the
// current day, so other dates get empty sets.
func (h *Handlers) dayLayout(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	today := clock.DateOf(now)
	date := today
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := clock.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: "+s)
			return
		}
		date = d
	}

	var viewport float64
	if s := r.URL.Query().Get("viewport"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid viewport: "+s)
			return
		}
		viewport = v
	}

	occs, err := h.Store.TasksByDate(date)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	settings, err := h.Store.Settings()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	cfg := timeline.Config{
		HourHeight: timeline.BaseHourHeight,
		Density:    settings.TimelineDensity,
	}
	nowMins := clock.NowMinutes(now)

	cards := cfg.Layout(occs, nowMins)
	if cards == nil {
		cards = []timeline.Card{}
	}
	indicators := []timeline.Indicator{}
	lines := []timeline.Line{}
	if date == today {
		if got := cfg.Indicators(occs, nowMins); got != nil {
			indicators = got
		}
		if got := cfg.Lines(occs, nowMins); got != nil {
			lines = got
		}
	}

	scroller := timeline.AutoScroller{Config: cfg, Viewport: viewport}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":         date.String(),
		"density":      timeline.ClampDensity(settings.TimelineDensity),
		"cards":        cards,
		"indicators":   indicators,
		"lines":        lines,
		"nowLineY":     cfg.NowLineY(nowMins),
		"scrollTarget": scroller.Target(nowMins),
	})
}

// --- Settings ---

func (h *Handlers) getSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := h.Store.Settings()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	for key, value := range patch {
		if err := h.Planner.UpdateSetting(r.Context(), key, value); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	settings, err := h.Store.Settings()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// --- Status / version ---

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.Version,
	})
}

func (h *Handlers) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": h.Version,
	})
}
