package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestUsersList_TableOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/public" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []map[string]interface{}{
				{"id": 1, "username": "alice", "age": 30, "description": "hi"},
				{"id": 2, "username": "bob", "age": 25, "description": ""},
			},
		})
	}))
	defer srv.Close()

	_ = os.Setenv("MODERNHN_API_URL", srv.URL)
	defer os.Unsetenv("MODERNHN_API_URL")

	out := captureOutput(t, func() {
		if err := runList(nil, nil); err != nil {
			t.Errorf("runList: %v", err)
		}
	})

	if !strings.Contains(out, "alice") || !strings.Contains(out, "bob") {
		t.Fatalf("expected usernames in output, got: %s", out)
	}
}

func TestUsersList_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Internal Server Error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_ = os.Setenv("MODERNHN_API_URL", srv.URL)
	defer os.Unsetenv("MODERNHN_API_URL")

	if err := runList(nil, nil); err == nil {
		t.Fatal("expected error for API failure")
	}
}
