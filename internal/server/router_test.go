package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/seedmix/internal/shared"
)

type echoHandler struct{ routes []string }

func (e *echoHandler) Routes() []string { return e.routes }

func (e *echoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("echo"))
}

func TestBasicRouter(t *testing.T) {
	t.Run("Registers Handler Routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(&echoHandler{routes: []string{"GET /echo"}})

		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "echo" {
			t.Errorf("expected echo response, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("Method Mismatch Is Rejected", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(&echoHandler{routes: []string{"POST /echo"}})

		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("Middleware Wraps Requests", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Wrapped", "yes")
				next.ServeHTTP(w, r)
			})
		})
		router.Handler(&echoHandler{routes: []string{"GET /echo"}})

		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Header().Get("X-Wrapped") != "yes" {
			t.Error("expected middleware to run")
		}
	})

	t.Run("Recover Middleware Converts Panics", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(RecoverMiddleware(shared.NewLogger(nil)))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		}))

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
	})
}
