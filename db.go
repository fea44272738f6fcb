package tempo

import (
	"time"

	"github.com/google/uuid"
)

type ExistingRecord[T ~string] struct {
	ID        T
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewExistingRecord[T ~string](id string) ExistingRecord[T] {
	return NewExistingRecordAt[T](id, time.Now())
}

func NewExistingRecordAt[T ~string](id string, at time.Time) ExistingRecord[T] {
	return ExistingRecord[T]{
		ID:        T(id),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}
