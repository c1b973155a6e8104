package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Magicred-1/agenthub/internal/models"
)

func TestLoggerIncludesProfile(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	profile := &models.Profile{ID: uuid.New()}
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	req = req.WithContext(context.WithValue(req.Context(), ProfileContextKey, profile))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, `"profile_id":"`+profile.ID.String()+`"`) {
		t.Fatalf("profile_id missing from log line: %s", out)
	}
	if !strings.Contains(out, `"status":418`) {
		t.Fatalf("status missing from log line: %s", out)
	}
	if !strings.Contains(out, `"bytes":15`) {
		t.Fatalf("bytes missing from log line: %s", out)
	}
}

func TestLoggerAnonymousOmitsProfile(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if strings.Contains(buf.String(), "profile_id") {
		t.Fatalf("profile_id logged for anonymous request: %s", buf.String())
	}
}
