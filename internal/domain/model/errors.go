package model

import "errors"

var (
	// ErrUploadNotFound is returned when an upload does not exist for the caller.
	ErrUploadNotFound = errors.New("upload not found")
	// ErrVisualStateNotFound is returned when a user has no saved dashboard state.
	ErrVisualStateNotFound = errors.New("visual state not found")
)
