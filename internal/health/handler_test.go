package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ltcare/familyhub/internal/testutil"
)

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error {
	return errors.New("connection refused")
}

func TestServe(t *testing.T) {
	db := testutil.NewDB(t)

	rec := httptest.NewRecorder()
	NewHandler(db, time.Second, zap.NewNop()).Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"connected"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewHandler(failingPinger{}, time.Second, zap.NewNop()).Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
