package dao

import "errors"

var (
	ErrNotFound  = errors.New("dao: not found")
	ErrInvalidID = errors.New("dao: invalid id")
	ErrNilEntity = errors.New("dao: nil entity")
)
