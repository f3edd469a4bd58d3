package addon

import "errors"

var (
	ErrAddonNotFound = errors.New("add-on not found")
	ErrInvalidInput  = errors.New("invalid add-on input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmptyUpdate   = errors.New("update has no fields")
)
