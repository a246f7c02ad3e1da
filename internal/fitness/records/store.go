package records

import (
	"context"
	"errors"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownUser    = errors.New("unknown user")
)

// Store is the record store contract: records are scoped under a user
// and a modality collection, and listed newest first.
type Store interface {
	List(ctx context.Context, userID string, modality Modality) ([]Record, error)
	Create(ctx context.Context, record Record) (string, error)
	Delete(ctx context.Context, userID string, modality Modality, id string) error
}
