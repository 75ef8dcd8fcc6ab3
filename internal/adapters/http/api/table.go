package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/okian/recessionwatch/internal/adapters/exporter"
	"github.com/okian/recessionwatch/internal/adapters/repository"
	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/fusion"
)

// TableDependencies defines the interface for reading the fused table.
type TableDependencies interface {
	Latest() (repository.Snapshot, error)
}

// TableHandler serves the labeled table.
type TableHandler struct {
	deps TableDependencies
}

// NewTableHandler creates a new table handler.
func NewTableHandler(deps TableDependencies) *TableHandler {
	return &TableHandler{deps: deps}
}

type tableResponse struct {
	RefreshID   string          `json:"refresh_id"`
	RefreshedAt time.Time       `json:"refreshed_at"`
	Columns     []string        `json:"columns"`
	Rows        []fusion.Record `json:"rows"`
}

// HandleTable handles GET /table requests. Optional from and to query
// parameters (YYYY-MM-DD) bound the rows, both inclusive.
func (h *TableHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, ok := h.latest(w)
	if !ok {
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rows := make([]fusion.Record, 0, snap.Table.Len())
	for _, rec := range snap.Table.Records() {
		if inRange(rec.Date, from, to) {
			rows = append(rows, rec)
		}
	}
	writeJSON(w, http.StatusOK, tableResponse{
		RefreshID:   snap.ID.String(),
		RefreshedAt: snap.CreatedAt,
		Columns:     snap.Table.Columns(),
		Rows:        rows,
	})
}

// HandleTableCSV handles GET /table.csv requests.
func (h *TableHandler) HandleTableCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, ok := h.latest(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="recessionwatch.csv"`)
	_ = exporter.WriteCSV(w, snap.Table)
}

func (h *TableHandler) latest(w http.ResponseWriter) (repository.Snapshot, bool) {
	snap, err := h.deps.Latest()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", fmt.Errorf("%w: %w", ErrNotReady, err))
		return repository.Snapshot{}, false
	}
	return snap, true
}

func parseRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse(calendar.ISOLayout, v); err != nil {
			return from, to, fmt.Errorf("%w: invalid from date %q", ErrBadRequest, v)
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse(calendar.ISOLayout, v); err != nil {
			return from, to, fmt.Errorf("%w: invalid to date %q", ErrBadRequest, v)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("%w: to precedes from", ErrBadRequest)
	}
	return from, to, nil
}

func inRange(d calendar.Date, from, to time.Time) bool {
	t := d.Time()
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
