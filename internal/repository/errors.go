package repository

import "errors"

var (
	ErrNotFound            = errors.New("entity not found")
	ErrDuplicateActiveCart = errors.New("user already has an active cart")
	ErrConflict            = errors.New("optimistic lock conflict: cart was modified by another process")
	ErrUnavailable         = errors.New("backing store or catalog unavailable")
	ErrQueryFailed         = errors.New("database query failed")
)
