package pool

import "errors"

var (
	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("pool: database unreachable")
	// ErrPoolExhausted means no connection became free within the acquire timeout.
	ErrPoolExhausted = errors.New("pool: no connection available")
	// ErrPoolClosed is returned when acquiring from a pool that is not open.
	ErrPoolClosed  = errors.New("pool: closed")
	ErrAlreadyOpen = errors.New("pool: already open")
	// ErrNoLeaseScope means the request did not pass through Middleware.
	ErrNoLeaseScope = errors.New("pool: no lease scope in context")
)

// ConnectionError wraps a failure to reach the backing database.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "pool: connection error: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Err}
}
