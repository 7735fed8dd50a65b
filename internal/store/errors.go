package store

import "errors"

var (
	ErrNotFound        = errors.New("store: not found")
	ErrVersionConflict = errors.New("store: version conflict")
	ErrInvalidArgument = errors.New("store: invalid argument")
	ErrUnavailable     = errors.New("store: backend unavailable")
)
