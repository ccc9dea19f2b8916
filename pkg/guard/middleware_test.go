package guard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/schoolkit/pkg/guard"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func requestAs(p *guard.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	if p != nil {
		req = req.WithContext(guard.WithPrincipal(req.Context(), p))
	}
	return req
}

func TestMiddleware(t *testing.T) {
	tenantID := uuid.New()
	g := guard.New(guard.StoreResolver(seedStore(t, tenantID)))

	t.Run("allowed request passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw := g.Middleware("students:read")
		mw(okHandler()).ServeHTTP(rec, requestAs(principalWith(tenantID, "Form Teacher")))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing principal is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw := g.Middleware("students:read")
		mw(okHandler()).ServeHTTP(rec, requestAs(nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("denied request is 403 with missing keys", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw := g.Middleware("students:delete")
		mw(okHandler()).ServeHTTP(rec, requestAs(principalWith(tenantID, "Form Teacher")))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body struct {
			Error       string   `json:"error"`
			MissingKeys []string `json:"missing_keys"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "forbidden", body.Error)
		assert.Equal(t, []string{"students:delete"}, body.MissingKeys)
	})

	t.Run("no required keys lets anonymous requests through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw := g.Middleware()
		mw(okHandler()).ServeHTTP(rec, requestAs(nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("custom error handler invoked", func(t *testing.T) {
		called := false
		handler := func(w http.ResponseWriter, r *http.Request, err error) {
			called = true
			w.WriteHeader(http.StatusTeapot)
		}

		rec := httptest.NewRecorder()
		mw := g.MiddlewareWithErrorHandler(handler, "students:delete")
		mw(okHandler()).ServeHTTP(rec, requestAs(principalWith(tenantID, "Form Teacher")))

		assert.True(t, called)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestMiddleware_WithChiRouter(t *testing.T) {
	tenantID := uuid.New()
	g := guard.New(guard.StoreResolver(seedStore(t, tenantID)))

	r := chi.NewRouter()
	r.With(g.Middleware("students:update")).Put("/students/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPut, "/students/42", nil)
	req = req.WithContext(guard.WithPrincipal(req.Context(), principalWith(tenantID, "Form Teacher")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	denied := httptest.NewRequest(http.MethodPut, "/students/42", nil)
	denied = denied.WithContext(guard.WithPrincipal(context.Background(), principalWith(tenantID, "Empty Role")))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, denied)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
