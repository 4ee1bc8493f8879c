package cache

import "errors"

var (
	// ErrInvalidKey is returned when a key is missing a collection or
	// statement, or carries parameters that cannot be serialized stably.
	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrSessionEnded is returned when a session is used after End.
	ErrSessionEnded = errors.New("cache: session ended")

	// ErrInvalidResultType is returned when a cached value does not match the
	// type requested by the caller.
	ErrInvalidResultType = errors.New("cache: invalid result type")

	// ErrUnknownCodec is returned for an unsupported codec name.
	ErrUnknownCodec = errors.New("cache: unknown codec")

	// ErrNilFetch is returned when a lookup is given no compute function.
	ErrNilFetch = errors.New("cache: nil fetch function")
)
