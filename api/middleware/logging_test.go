package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line: %v (%s)", err, sc.Text())
		}
		out = append(out, entry)
	}
	return out
}

func TestLoggingRecordsCompletion(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected only the completion line at info level, got %d", len(lines))
	}
	entry := lines[0]
	if entry["message"] != "request.complete" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["status"] != float64(http.StatusCreated) || entry["bytes"] != float64(5) {
		t.Fatalf("expected status and size, got %v", entry)
	}
	if entry["path"] != "/api/v1/cart/items" || entry["method"] != http.MethodPost {
		t.Fatalf("expected method and path, got %v", entry)
	}
}

func TestLoggingWarnsOnServerErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	lines := decodeLines(t, buf)
	if len(lines) != 1 || lines[0]["level"] != "warn" {
		t.Fatalf("expected a single warn line, got %v", lines)
	}
}
