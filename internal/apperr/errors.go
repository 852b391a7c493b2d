package apperr

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUnknownType          = errors.New("unknown type")
	ErrDuplicateProviderTag = errors.New("duplicate provider tag")
	ErrIDCollision          = errors.New("id collision")
	ErrInvalidID            = errors.New("invalid id")
)
