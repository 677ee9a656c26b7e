package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func wsRouter(s *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", s.HandleWS)
	return r
}

// Rapid reconnects from one origin exhaust the connection-attempt budget and
// are rejected before the upgrade with a plain 429 and a retry hint.
func TestHandleWS_ConnectionAttemptLimitRejectsBeforeUpgrade(t *testing.T) {
	req := require.New(t)
	s, _ := newTestServer(t, testConfig())
	r := wsRouter(s)

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
		return w
	}

	// The first five attempts pass admission; without a websocket handshake
	// the upgrade itself then fails, which is fine here.
	for i := 0; i < 5; i++ {
		w := do()
		req.Equal(http.StatusBadRequest, w.Code, "attempt %d reaches the upgrader", i+1)
	}

	w := do()
	req.Equal(http.StatusTooManyRequests, w.Code)

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	req.NoError(err)
	req.GreaterOrEqual(retry, 1)

	var body map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("too many connection attempts", body["message"])
	req.Greater(body["retryAfter"].(float64), float64(0))
}
