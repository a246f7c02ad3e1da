package users

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUserExists  = errors.New("user already exists")
	ErrInvalidUser = errors.New("invalid user")
)

// User is a roster member. The roster is read-only through the API.
type User struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: id empty", ErrInvalidUser)
	}
	if u.Name == "" {
		return fmt.Errorf("%w: name empty", ErrInvalidUser)
	}
	return nil
}

// Lister returns the full roster.
type Lister interface {
	List(ctx context.Context) ([]User, error)
}
