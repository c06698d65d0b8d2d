package drift

import "errors"

var (
	ErrNotInitialized = errors.New("drift: graphics not initialized")
	ErrBackendInit    = errors.New("drift: renderer initialization failed")
	ErrReflectionMap  = errors.New("drift: unusable reflection map")
)
