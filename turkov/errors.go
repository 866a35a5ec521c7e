package turkov

import "errors"

var (
	// ErrAuthentication marks failures caused by missing or rejected credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrValue marks command arguments the device would reject.
	ErrValue = errors.New("invalid value")
)
