package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/recessionwatch/internal/adapters/repository"
)

// RefreshDependencies defines the interface for triggering a refresh.
type RefreshDependencies interface {
	Refresh(ctx context.Context) (repository.Snapshot, error)
}

// RefreshHandler handles refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

type refreshResponse struct {
	RefreshID   string    `json:"refresh_id"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Rows        int       `json:"rows"`
	Columns     int       `json:"columns"`
	First       string    `json:"first"`
	Last        string    `json:"last"`
}

// HandleRefresh handles POST /refresh requests. The call blocks until the
// pipeline finishes; a failed run leaves the served table unchanged.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	// The refresh is shared; a client hanging up must not abort it.
	snap, err := h.deps.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadGateway, "refresh_failed", err)
		return
	}
	first, _ := snap.Table.First()
	last, _ := snap.Table.Last()
	writeJSON(w, http.StatusOK, refreshResponse{
		RefreshID:   snap.ID.String(),
		RefreshedAt: snap.CreatedAt,
		Rows:        snap.Table.Len(),
		Columns:     len(snap.Table.Columns()),
		First:       first.String(),
		Last:        last.String(),
	})
}
