package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidName = errors.New("invalid file name")
	ErrNotDir      = errors.New("store path is not a directory")
)
