package users

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/pkg"
)

type ListResponse struct {
	Users []User `json:"users"`
}

type Handler struct {
	roster Lister
}

func NewHandler(roster Lister) *Handler {
	return &Handler{
		roster: roster,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	users, err := handler.roster.List(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		http.Error(w, "error, failed to get users", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{Users: users}, http.StatusOK)
}
