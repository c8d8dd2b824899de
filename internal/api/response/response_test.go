package response

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": 69})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Body.String(); got != `{"id":69,"success":true}` {
		t.Errorf("body = %s", got)
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, math.Inf(1))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		code  int
		body  string
	}{
		{
			name:  "bad request",
			write: func(w http.ResponseWriter) { Error(w, http.StatusBadRequest, MessageBadRequest) },
			code:  http.StatusBadRequest,
			body:  `{"success":false,"error":400,"message":"bad request"}`,
		},
		{
			name: "auth error with code",
			write: func(w http.ResponseWriter) {
				ErrorWithCode(w, http.StatusUnauthorized, "Token expired.", "token_expired")
			},
			code: http.StatusUnauthorized,
			body: `{"success":false,"error":401,"message":"Token expired.","code":"token_expired"}`,
		},
		{
			name:  "not found",
			write: func(w http.ResponseWriter) { NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil)) },
			code:  http.StatusNotFound,
			body:  `{"success":false,"error":404,"message":"resource not found"}`,
		},
		{
			name:  "method not allowed",
			write: func(w http.ResponseWriter) { MethodNotAllowed(w, httptest.NewRequest(http.MethodPut, "/bots", nil)) },
			code:  http.StatusMethodNotAllowed,
			body:  `{"success":false,"error":405,"message":"method not allowed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if got := w.Body.String(); got != tt.body {
				t.Errorf("body = %s, want %s", got, tt.body)
			}
		})
	}
}
