package pool

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

type ctxScopeKey struct{}

// scope holds the connection leased for one request, once there is one.
type scope struct {
	pool *Pool

	mu    sync.Mutex
	lease *Lease
}

// Middleware opens a lease scope for each request. The connection is leased
// on the first LeaseFromContext call, so requests rejected before touching
// the database never hold one, and it is released when the handler returns,
// panics included.
func (p *Pool) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &scope{pool: p}
		defer s.release()

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxScopeKey{}, s)))
	})
}

// LeaseFromContext returns the request's connection, leasing it from the
// pool on first use. It fails with ErrNoLeaseScope outside Middleware and
// with the Acquire error when no connection can be had.
func LeaseFromContext(ctx context.Context) (*Lease, error) {
	s, ok := ctx.Value(ctxScopeKey{}).(*scope)
	if !ok {
		return nil, ErrNoLeaseScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease != nil {
		return s.lease, nil
	}
	l, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.lease = l
	return l, nil
}

func (s *scope) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease != nil {
		s.lease.Release()
	}
}

// UnavailableMessage is the client-facing text for a failed lease.
func UnavailableMessage(err error) string {
	switch {
	case errors.Is(err, ErrPoolExhausted):
		return "database busy, try again later"
	case errors.Is(err, ErrPoolClosed):
		return "service is shutting down"
	}
	return "database unavailable"
}
