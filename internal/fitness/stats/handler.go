package stats

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/pkg"
)

type Handler struct {
	analyzer *Analyzer
	now      func() time.Time
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
		now:      time.Now,
	}
}

// HandleUserStats returns the chart series and rolling totals of a user.
// The optional "at" query param (RFC3339, fractional seconds allowed) moves the reference time of the totals.
func (handler *Handler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.user")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["uid"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	modality, err := records.ParseModality(vars["modality"])
	if err != nil {
		http.Error(w, "error, unknown modality", http.StatusBadRequest)
		return
	}

	ref := handler.now()
	if at := r.URL.Query().Get("at"); at != "" {
		ref, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			http.Error(w, "error, invalid at param", http.StatusBadRequest)
			return
		}
	}

	userStats, err := handler.analyzer.UserStats(ctx, userID, modality, ref)
	if err != nil {
		log.Errorf("user stats [%s] [%s]: %s", userID, modality, err)
		http.Error(w, "error, failed to get stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, userStats, http.StatusOK)
}

func (handler *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.overview")
	defer span.End()

	modality, err := records.ParseModality(mux.Vars(r)["modality"])
	if err != nil {
		http.Error(w, "error, unknown modality", http.StatusBadRequest)
		return
	}

	overview, err := handler.analyzer.Overview(ctx, modality, handler.now())
	if overview == nil {
		log.Errorf("overview [%s]: %s", modality, err)
		http.Error(w, "error, failed to get overview", http.StatusInternalServerError)
		return
	}
	if err != nil {
		// partial overview, failures are listed in the response
		log.Warnf("overview [%s] incomplete: %s", modality, err)
	}

	pkg.WriteJSON(w, overview, http.StatusOK)
}
