package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sitechat/sitechat/utils/logging"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRequestLoggerPassesTraceID(t *testing.T) {
	var traceID string
	h := middleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = logging.TraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.NotEmpty(t, traceID)
}
