package serverhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"match-service/internal/config"
)

func TestRouter(t *testing.T) {
	cfg := config.Config{AllowOrigins: []string{"*"}, MaxUploadMB: 1, DefaultThreshold: 85, Scorer: "token_set"}
	r := NewRouter(cfg, zerolog.Nop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/match", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// без multipart-тела
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/match", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
