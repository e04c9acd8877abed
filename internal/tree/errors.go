package tree

import "errors"

var (
	// ErrValidation marks bad or missing user input; nothing was changed
	ErrValidation = errors.New("invalid input")
	// ErrRemote marks a failed remote call; nothing was changed locally
	ErrRemote = errors.New("remote operation failed")
)
