package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructuredLogger(t *testing.T) {
	cases := []struct {
		name   string
		status int
		level  string
		msg    string
	}{
		{"Success", http.StatusOK, "INFO", "request completed"},
		{"Client Error", http.StatusUnprocessableEntity, "WARN", "request rejected"},
		{"Server Error", http.StatusInternalServerError, "ERROR", "server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := NewStructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/users/u1/wallet/debit", nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tc.level, line["level"])
			assert.Equal(t, tc.msg, line["msg"])
			request := line["request"].(map[string]any)
			assert.Equal(t, "/users/u1/wallet/debit", request["path"])
			response := line["response"].(map[string]any)
			assert.Equal(t, float64(tc.status), response["status"])
		})
	}
}
