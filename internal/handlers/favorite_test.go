package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/modernhn/modernhn/internal/middleware"
	"github.com/modernhn/modernhn/internal/models"
	"github.com/modernhn/modernhn/internal/repo"
)

// authedRequest returns a request with a resolved user attached, as the
// authentication middleware would leave it, plus optional chi URL params.
func authedRequest(method, path string, body []byte, user *models.User, params map[string]string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, path, bytes.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	ctx := middleware.WithUser(r.Context(), user)
	if params != nil {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return r.WithContext(ctx)
}

func testUser() *models.User {
	return &models.User{ID: 1, Username: "alice", Email: "alice@example.com", Age: 30, ProfileVisibility: true}
}

func TestFavoriteHandler_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, story_id`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "story_id", "title", "url", "by", "score", "time", "created_at",
		}).AddRow(1, 1, 100, "A story", nil, "bob", 42, int64(1700000000), time.Now()))

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	req := authedRequest("GET", "/api/favorites", nil, testUser(), nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("List status: got %d, want 200", rr.Code)
	}
	var out struct {
		Favorites []struct {
			StoryID int    `json:"storyId"`
			Title   string `json:"title"`
		} `json:"favorites"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Favorites) != 1 || out.Favorites[0].StoryID != 100 || out.Favorites[0].Title != "A story" {
		t.Errorf("unexpected favorites: %+v", out.Favorites)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteHandler_Add(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 100).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO favorites`).
		WithArgs(1, 100, "A story", "https://example.com", "bob", 42, int64(1700000000)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "story_id", "title", "url", "by", "score", "time", "created_at",
		}).AddRow(1, 1, 100, "A story", "https://example.com", "bob", 42, int64(1700000000), time.Now()))

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{
		"storyId": 100,
		"title":   "A story",
		"url":     "https://example.com",
		"by":      "bob",
		"score":   42,
		"time":    1700000000,
	})
	req := authedRequest("POST", "/api/favorites", body, testUser(), nil)
	rr := httptest.NewRecorder()
	h.Add(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Add status: got %d, want 201, body: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Message  string `json:"message"`
		Favorite struct {
			StoryID int `json:"storyId"`
		} `json:"favorite"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Message != "Story added to favorites" || out.Favorite.StoryID != 100 {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteHandler_Add_AlreadyFavorited(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	body, _ := json.Marshal(map[string]interface{}{
		"storyId": 100,
		"title":   "A story",
		"by":      "bob",
		"score":   42,
		"time":    1700000000,
	})
	req := authedRequest("POST", "/api/favorites", body, testUser(), nil)
	rr := httptest.NewRecorder()
	h.Add(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Add status: got %d, want 400", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "Story is already in favorites" {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteHandler_Add_MissingFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	// Only a title: storyId, by, score, and time are all missing.
	body, _ := json.Marshal(map[string]interface{}{"title": "A story"})
	req := authedRequest("POST", "/api/favorites", body, testUser(), nil)
	rr := httptest.NewRecorder()
	h.Add(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Add status: got %d, want 400", rr.Code)
	}
	var out struct {
		Errors []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Errors) != 4 {
		t.Errorf("expected 4 field errors, got %d: %+v", len(out.Errors), out.Errors)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteHandler_Remove(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 100).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	req := authedRequest("DELETE", "/api/favorites/100", nil, testUser(), map[string]string{"storyId": "100"})
	rr := httptest.NewRecorder()
	h.Remove(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Remove status: got %d, want 200", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "Story removed from favorites" {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteHandler_Remove_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM favorites WHERE user_id = \$1 AND story_id = \$2`).
		WithArgs(1, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	req := authedRequest("DELETE", "/api/favorites/999", nil, testUser(), map[string]string{"storyId": "999"})
	rr := httptest.NewRecorder()
	h.Remove(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Remove status: got %d, want 404", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "Favorite not found" {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFavoriteHandler_Remove_BadStoryID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &FavoriteHandler{Favorites: repo.NewFavoriteRepo(db)}

	req := authedRequest("DELETE", "/api/favorites/abc", nil, testUser(), map[string]string{"storyId": "abc"})
	rr := httptest.NewRecorder()
	h.Remove(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Remove status: got %d, want 400", rr.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["message"] != "Invalid story ID" {
		t.Errorf("unexpected message: %q", out["message"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
