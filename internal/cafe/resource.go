package cafe

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cafeteria-service/internal/pool"
)

// Payload is a decoded create/update body.
type Payload interface {
	Values() []any
}

// Messages are the client-facing error texts of one resource.
type Messages struct {
	Create   string
	Update   string
	Delete   string
	NotFound string
}

const genericQueryError = "Ocurrió un error, consulte con su Administrador"

// Resource binds a table to its five HTTP endpoints. P is the request body
// type accepted by create and update.
type Resource[P Payload] struct {
	Path     string
	Table    Table
	Messages Messages
}

func (res Resource[P]) Mount(s *Server, r chi.Router) {
	r.Route(res.Path, func(r chi.Router) {
		r.Get("/", res.handleList(s))
		r.Post("/", res.handleCreate(s))
		r.Get("/{id}", res.handleGet(s))
		r.Put("/{id}", res.handleUpdate(s))
		r.Delete("/{id}", res.handleDelete(s))
	})
}

func (res Resource[P]) handleList(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lease, ok := s.lease(w, r)
		if !ok {
			return
		}
		rows, err := res.Table.List(r.Context(), lease)
		if err != nil {
			s.queryFailed(w, r, res.Table.Name, "list", err, genericQueryError)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

// handleGet answers null, not 404, when the row does not exist.
func (res Resource[P]) handleGet(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		lease, ok := s.lease(w, r)
		if !ok {
			return
		}
		row, err := res.Table.Get(r.Context(), lease, id)
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.queryFailed(w, r, res.Table.Name, "get", err, genericQueryError)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func (res Resource[P]) handleCreate(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePayload[P](s, w, r)
		if !ok {
			return
		}
		lease, ok := s.lease(w, r)
		if !ok {
			return
		}
		row, err := res.Table.Insert(r.Context(), lease, in.Values())
		if err != nil {
			s.queryFailed(w, r, res.Table.Name, "create", err, res.Messages.Create)
			return
		}
		writeJSON(w, http.StatusCreated, row)
	}
}

func (res Resource[P]) handleUpdate(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		in, ok := decodePayload[P](s, w, r)
		if !ok {
			return
		}
		lease, ok := s.lease(w, r)
		if !ok {
			return
		}
		row, err := res.Table.Update(r.Context(), lease, id, in.Values())
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, res.Messages.NotFound)
			return
		}
		if err != nil {
			s.queryFailed(w, r, res.Table.Name, "update", err, res.Messages.Update)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func (res Resource[P]) handleDelete(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		lease, ok := s.lease(w, r)
		if !ok {
			return
		}
		row, err := res.Table.Delete(r.Context(), lease, id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, res.Messages.NotFound)
			return
		}
		if err != nil {
			s.queryFailed(w, r, res.Table.Name, "delete", err, res.Messages.Delete)
			return
		}
		writeJSON(w, http.StatusOK, row)
	}
}

func decodePayload[P Payload](s *Server, w http.ResponseWriter, r *http.Request) (P, bool) {
	var in P
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return in, false
	}
	if err := s.validate.Struct(in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return in, false
	}
	return in, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

// lease takes the request's connection from the scope opened by
// pool.Middleware. Handlers call it only after the id and body are valid.
func (s *Server) lease(w http.ResponseWriter, r *http.Request) (*pool.Lease, bool) {
	l, err := pool.LeaseFromContext(r.Context())
	switch {
	case err == nil:
		return l, true
	case errors.Is(err, pool.ErrNoLeaseScope):
		s.logger.ErrorContext(r.Context(), "no lease scope on request", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		s.logger.WarnContext(r.Context(), "lease connection", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusServiceUnavailable, pool.UnavailableMessage(err))
	}
	return nil, false
}
