// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/recessionwatch/internal/adapters/repository"
	"github.com/okian/recessionwatch/internal/domain/labels"
	"github.com/okian/recessionwatch/internal/domain/recession"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Latest returns the most recent labeled table.
	Latest() (repository.Snapshot, error)

	// Refresh rebuilds the table from the upstream sources.
	Refresh(ctx context.Context) (repository.Snapshot, error)

	// Calendar queries.
	Recessions() []recession.Interval
	Labels(d time.Time) labels.Set
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	tableHandler      *TableHandler
	recessionsHandler *RecessionsHandler
	labelsHandler     *LabelsHandler
	refreshHandler    *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		tableHandler:      NewTableHandler(deps),
		recessionsHandler: NewRecessionsHandler(deps),
		labelsHandler:     NewLabelsHandler(deps),
		refreshHandler:    NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/table", MetricsMiddleware(s.tableHandler.HandleTable, "table"))
	mux.HandleFunc("/table.csv", MetricsMiddleware(s.tableHandler.HandleTableCSV, "table_csv"))
	mux.HandleFunc("/recessions", MetricsMiddleware(s.recessionsHandler.HandleRecessions, "recessions"))
	mux.HandleFunc("/labels/", MetricsMiddleware(s.labelsHandler.HandleLabels, "labels"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
