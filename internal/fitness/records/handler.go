package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittracker/internal/telemetry/tracing"
	"github.com/2beens/fittracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=records_mocks_test.go -package=records_test

type recordsService interface {
	List(ctx context.Context, userID string, modality Modality) ([]Record, error)
	Create(ctx context.Context, record Record) (string, error)
	Delete(ctx context.Context, userID string, modality Modality, id string) error
}

type ListResponse struct {
	Entries []Record `json:"entries"`
	Total   int      `json:"total"`
}

type AddResponse struct {
	ID string `json:"id"`
}

type DeleteResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	service recordsService
	now     func() time.Time
}

func NewHandler(service recordsService) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

// pathParams reads and checks the {uid} and {modality} route variables.
func pathParams(w http.ResponseWriter, r *http.Request) (string, Modality, bool) {
	vars := mux.Vars(r)
	userID := vars["uid"]
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return "", "", false
	}
	modality, err := ParseModality(vars["modality"])
	if err != nil {
		http.Error(w, "error, unknown modality", http.StatusBadRequest)
		return "", "", false
	}
	return userID, modality, true
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.list")
	defer span.End()

	userID, modality, ok := pathParams(w, r)
	if !ok {
		return
	}

	entries, err := handler.service.List(ctx, userID, modality)
	if err != nil {
		log.Errorf("list entries [%s] [%s]: %s", userID, modality, err)
		http.Error(w, "error, failed to get entries", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Entries: entries,
		Total:   len(entries),
	}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.add")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	userID, modality, ok := pathParams(w, r)
	if !ok {
		return
	}

	var record Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		log.Tracef("new entry, unmarshal json params: %s", err)
		http.Error(w, "error, invalid entry: "+err.Error(), http.StatusBadRequest)
		return
	}

	if record.Modality() != modality {
		http.Error(w, "error, entry does not match modality "+modality.String(), http.StatusBadRequest)
		return
	}
	if record.UserID != "" && record.UserID != userID {
		http.Error(w, "error, entry user id does not match path", http.StatusBadRequest)
		return
	}
	record.ID = ""
	record.UserID = userID
	if record.Timestamp.IsZero() {
		record.Timestamp = handler.now()
	}

	id, err := handler.service.Create(ctx, record)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRecord):
			http.Error(w, "error, "+err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrUnknownUser):
			http.Error(w, "error, unknown user", http.StatusNotFound)
		default:
			log.Errorf("failed to add new entry for [%s] [%s]: %s", userID, modality, err)
			http.Error(w, "error, failed to add new entry", http.StatusInternalServerError)
		}
		return
	}

	log.Debugf("new entry added: %s [%s] [%s]", id, userID, modality)
	pkg.WriteJSON(w, AddResponse{ID: id}, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.delete")
	defer span.End()

	userID, modality, ok := pathParams(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, userID, modality, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			http.Error(w, "error, entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete entry [%s]: %s", id, err)
		http.Error(w, "error, failed to delete entry", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}
