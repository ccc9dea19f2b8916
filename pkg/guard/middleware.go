package guard

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorHandler maps a denied evaluation to an HTTP response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware returns HTTP middleware enforcing the required keys for every
// request passing through it. The principal is read from the request
// context (see WithPrincipal); missing or denied principals are handed to
// the error handler and the chain stops.
//
// Works with any router that accepts func(http.Handler) http.Handler,
// chi included:
//
//	r := chi.NewRouter()
//	r.With(g.Middleware("students:update")).Put("/students/{id}", updateStudent)
func (g *Guard) Middleware(requiredKeys ...string) func(http.Handler) http.Handler {
	return g.MiddlewareWithErrorHandler(defaultErrorHandler, requiredKeys...)
}

// MiddlewareWithErrorHandler is Middleware with a custom deny handler.
func (g *Guard) MiddlewareWithErrorHandler(errorHandler ErrorHandler, requiredKeys ...string) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok && len(requiredKeys) > 0 {
				errorHandler(w, r, ErrNoPrincipalInContext)
				return
			}

			if _, err := g.Authorize(r.Context(), principal, requiredKeys); err != nil {
				errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// defaultErrorHandler writes a minimal JSON error body: 401 for missing
// principals, 403 with the unmet keys for denials, 500 otherwise.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var forbidden *ForbiddenError
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrNoPrincipalInContext):
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
	case errors.As(err, &forbidden):
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":        "forbidden",
			"missing_keys": forbidden.MissingKeys,
		})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "internal_error"})
	}
}
