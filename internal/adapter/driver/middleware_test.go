package driver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestWithRequestLogging(t *testing.T) {
	t.Run("assigns a request id when none is present", func(t *testing.T) {
		handler := WithRequestLogging(testLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/user/1", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		id := w.Header().Get(requestIDHeader)
		if id == "" {
			t.Fatal("expected a request id to be assigned")
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("expected a valid uuid, got %q: %v", id, err)
		}
		if w.Code != http.StatusNoContent {
			t.Errorf("expected the wrapped status to pass through, got %d", w.Code)
		}
	})

	t.Run("keeps an incoming request id", func(t *testing.T) {
		handler := WithRequestLogging(testLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/user/1", nil)
		req.Header.Set(requestIDHeader, "client-supplied-id")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get(requestIDHeader); got != "client-supplied-id" {
			t.Errorf("expected the incoming id to be echoed, got %q", got)
		}
	})
}
