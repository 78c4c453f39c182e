package router

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/matryer/is"
)

func TestHealthEndpoint(t *testing.T) {
	is := is.New(t)

	r := New("test", slog.Default())
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	is.NoErr(err)
	defer resp.Body.Close()

	is.Equal(resp.StatusCode, http.StatusOK)
}

func TestHandlersGetALoggerInTheirContext(t *testing.T) {
	is := is.New(t)

	r := New("test", slog.Default())

	var found bool
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		found = logging.GetFromContext(req.Context()) != nil
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	is.Equal(w.Code, http.StatusNoContent)
	is.True(found)
}
