package portfolio

import "errors"

var (
	// ErrNotFound is returned by point lookups when the data does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRemoval is returned when removing a ledger entry that has no exact match.
	ErrInvalidRemoval = errors.New("no matching entry to remove")
	// ErrUnavailable is returned by price sources when the service cannot be reached.
	ErrUnavailable = errors.New("price source unavailable")
	// ErrInvalid is returned for rejected input.
	ErrInvalid = errors.New("invalid")
	// ErrImmutable is returned when changing an instrument already used by a transaction.
	ErrImmutable = errors.New("instrument is referenced by transactions")
)
