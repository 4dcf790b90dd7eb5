package usecase

import "errors"

var (
	// ErrMissingFile means the request carried no file or an unnamed one.
	ErrMissingFile = errors.New("file missing")

	// ErrUnsupportedFile means the file name does not match the endpoint's kind.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrFileMissingOnServer means the history row exists but its file is gone.
	ErrFileMissingOnServer = errors.New("file missing on server")
)
