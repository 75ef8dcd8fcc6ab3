package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/recessionwatch/internal/domain/calendar"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/internal/domain/recession"
	"github.com/okian/recessionwatch/internal/domain/types"
)

// CalendarDependencies defines the interface for recession calendar queries.
type CalendarDependencies interface {
	Recessions() []recession.Interval
	Labels(d time.Time) labels.Set
}

// RecessionsHandler lists the recession intervals.
type RecessionsHandler struct {
	deps CalendarDependencies
}

// NewRecessionsHandler creates a new recessions handler.
func NewRecessionsHandler(deps CalendarDependencies) *RecessionsHandler {
	return &RecessionsHandler{deps: deps}
}

type intervalResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// HandleRecessions handles GET /recessions requests.
func (h *RecessionsHandler) HandleRecessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	intervals := h.deps.Recessions()
	out := make([]intervalResponse, len(intervals))
	for i, iv := range intervals {
		out[i] = intervalResponse{
			Start: iv.Start.Format(calendar.ISOLayout),
			End:   iv.End.Format(calendar.ISOLayout),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// LabelsHandler evaluates the labels for a single day.
type LabelsHandler struct {
	deps CalendarDependencies
}

// NewLabelsHandler creates a new labels handler.
func NewLabelsHandler(deps CalendarDependencies) *LabelsHandler {
	return &LabelsHandler{deps: deps}
}

type labelsResponse struct {
	Date                string         `json:"date"`
	InRecession         bool           `json:"in_recession"`
	YearsSinceRecession types.Optional `json:"years_since_recession"`
	YearsUntilRecession types.Optional `json:"years_until_recession"`
	RecessionInNextYear types.Optional `json:"recession_in_next_year"`
}

// HandleLabels handles GET /labels/{YYYY-MM-DD} requests. Unknown labels
// are encoded as null.
func (h *LabelsHandler) HandleLabels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/labels/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	d, err := time.Parse(calendar.ISOLayout, path)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	set := h.deps.Labels(d)
	writeJSON(w, http.StatusOK, labelsResponse{
		Date:                d.Format(calendar.ISOLayout),
		InRecession:         set.InRecession,
		YearsSinceRecession: set.YearsSinceRecession,
		YearsUntilRecession: set.YearsUntilRecession,
		RecessionInNextYear: set.RecessionInNextYear,
	})
}
