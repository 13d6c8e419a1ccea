package sharpness

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is wrapped by every precondition failure
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrWindowTooSmall indicates a window size below MinWindowSize
	ErrWindowTooSmall = fmt.Errorf("%w: window too small", ErrInvalidParameter)

	// ErrImageTooSmall indicates an image dimension smaller than the window
	ErrImageTooSmall = fmt.Errorf("%w: image smaller than window", ErrInvalidParameter)

	// ErrRaggedImage indicates rows of unequal length
	ErrRaggedImage = fmt.Errorf("%w: image rows have unequal length", ErrInvalidParameter)

	// ErrNoCoordinates indicates an empty eye list
	ErrNoCoordinates = fmt.Errorf("%w: no coordinates supplied", ErrInvalidParameter)
)
