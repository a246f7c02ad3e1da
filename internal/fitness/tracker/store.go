package tracker

import (
	"context"

	"github.com/2beens/fittracker/internal/fitness/records"
	"github.com/2beens/fittracker/internal/fitness/users"
)

//go:generate mockgen -source=$GOFILE -destination=tracker_mocks_test.go -package=tracker_test

// Store is the remote record store as seen by the tracker controllers.
type Store interface {
	ListUsers(ctx context.Context) ([]users.User, error)
	ListRecords(ctx context.Context, userID string, modality records.Modality) ([]records.Record, error)
	CreateRecord(ctx context.Context, record records.Record) (string, error)
	DeleteRecord(ctx context.Context, userID string, modality records.Modality, id string) error
}
