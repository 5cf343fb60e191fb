package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubPinger はPingContextの戻り値を固定するテスト用Pingerです。
type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) PingContext(ctx context.Context) error {
	p.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

func setupRouter(db Pinger) *gin.Engine {
	h := NewHealthHandler(db)
	r := gin.New()
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	return r
}

// TestHealth_GET はDB疎通成功時に200とno-storeヘッダーが返ることを検証します。
func TestHealth_GET(t *testing.T) {
	t.Parallel()

	router := setupRouter(&stubPinger{})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, "ok", response["database"])
}

// TestHealth_DatabaseDown はDBに到達できない場合に503が返ることを検証します。
func TestHealth_DatabaseDown(t *testing.T) {
	t.Parallel()

	pinger := &stubPinger{err: errors.New("connection refused")}
	router := setupRouter(pinger)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 1, pinger.calls)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "unreachable", response["database"])
}

// TestHealth_NoDatabase はDB未設定時にプロセスの生存のみを返すことを検証します。
func TestHealth_NoDatabase(t *testing.T) {
	t.Parallel()

	router := setupRouter(nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skipped")
}

// TestHealth_ResponseStatus はHTTPメソッドごとのステータスコードを検証します。
func TestHealth_ResponseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		pingErr        error
		expectedStatus int
		expectBody     bool
	}{
		{"GET healthy", http.MethodGet, nil, http.StatusOK, true},
		{"HEAD healthy", http.MethodHead, nil, http.StatusOK, false},
		{"HEAD unhealthy", http.MethodHead, errors.New("down"), http.StatusServiceUnavailable, false},
		{"OPTIONS ignores database", http.MethodOptions, errors.New("down"), http.StatusNoContent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := setupRouter(&stubPinger{err: tt.pingErr})
			w := httptest.NewRecorder()

			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if !tt.expectBody {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}
