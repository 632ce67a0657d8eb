package models

import "errors"

var (
	// ErrServerNotFound - alias has never reported or was deleted
	ErrServerNotFound = errors.New("server not found")
)
