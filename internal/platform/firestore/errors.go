package firestore

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors shared by all repositories.
var (
	ErrNotFound      = errors.New("firestore: document not found")
	ErrAlreadyExists = errors.New("firestore: document already exists")
	ErrConflict      = errors.New("firestore: write conflict")
)

// MapError translates gRPC status codes into repository sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.Aborted, codes.FailedPrecondition:
		return ErrConflict
	default:
		return err
	}
}

// IsNotFound reports whether err maps to a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || status.Code(err) == codes.NotFound
}
