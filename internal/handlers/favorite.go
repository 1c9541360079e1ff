package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/modernhn/modernhn/internal/metrics"
	"github.com/modernhn/modernhn/internal/middleware"
	"github.com/modernhn/modernhn/internal/repo"
)

// FavoriteHandler handles the authenticated favorites collection. The owner is
// always the resolved caller; it is never taken from the request body.
type FavoriteHandler struct {
	Favorites *repo.FavoriteRepo
	Dev       bool
}

// List returns the caller's favorites, newest first.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONInternal(w, "Failed to get favorites", nil, h.Dev)
		return
	}

	favorites, err := h.Favorites.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list favorites failed", "user_id", user.ID, "error", err)
		JSONInternal(w, "Failed to get favorites", err, h.Dev)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

type addFavoriteInput struct {
	StoryID *int    `json:"storyId"`
	Title   string  `json:"title"`
	URL     *string `json:"url"`
	By      string  `json:"by"`
	Score   *int    `json:"score"`
	Time    *int64  `json:"time"`
}

func (in *addFavoriteInput) fieldErrors() []FieldError {
	var errs []FieldError
	if in.StoryID == nil {
		errs = append(errs, FieldError{Field: "storyId", Message: "Story ID must be an integer"})
	}
	if in.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
	}
	if in.By == "" {
		errs = append(errs, FieldError{Field: "by", Message: "Author is required"})
	}
	if in.Score == nil {
		errs = append(errs, FieldError{Field: "score", Message: "Score must be an integer"})
	}
	if in.Time == nil {
		errs = append(errs, FieldError{Field: "time", Message: "Time must be an integer"})
	}
	return errs
}

// Add saves a story snapshot for the caller. The pre-check gives the friendly
// duplicate error; the unique index catches the race.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONInternal(w, "Failed to add favorite", nil, h.Dev)
		return
	}

	var input addFavoriteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if errs := input.fieldErrors(); len(errs) > 0 {
		JSONValidationError(w, errs)
		return
	}

	exists, err := h.Favorites.Exists(r.Context(), user.ID, *input.StoryID)
	if err != nil {
		slog.Error("favorite pre-check failed", "user_id", user.ID, "story_id", *input.StoryID, "error", err)
		JSONInternal(w, "Failed to add favorite", err, h.Dev)
		return
	}
	if exists {
		JSONError(w, "Story is already in favorites", http.StatusBadRequest)
		return
	}

	fav, err := h.Favorites.Create(r.Context(), user.ID, *input.StoryID, input.Title, input.URL, input.By, *input.Score, *input.Time)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			JSONError(w, "Story is already in favorites", http.StatusBadRequest)
			return
		}
		slog.Error("add favorite failed", "user_id", user.ID, "story_id", *input.StoryID, "error", err)
		JSONInternal(w, "Failed to add favorite", err, h.Dev)
		return
	}

	slog.Info("favorite added", "user_id", user.ID, "story_id", fav.StoryID)
	metrics.IncFavorites("added")

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Story added to favorites",
		"favorite": fav,
	})
}

// Remove deletes the caller's favorite for a story. The lookup is scoped to
// the caller, so removing another user's favorite reports 404, never 200.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONInternal(w, "Failed to remove favorite", nil, h.Dev)
		return
	}

	storyID, err := strconv.Atoi(chi.URLParam(r, "storyId"))
	if err != nil {
		JSONError(w, "Invalid story ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.Favorites.Delete(r.Context(), user.ID, storyID)
	if err != nil {
		slog.Error("remove favorite failed", "user_id", user.ID, "story_id", storyID, "error", err)
		JSONInternal(w, "Failed to remove favorite", err, h.Dev)
		return
	}
	if !deleted {
		JSONError(w, "Favorite not found", http.StatusNotFound)
		return
	}

	slog.Info("favorite removed", "user_id", user.ID, "story_id", storyID)
	metrics.IncFavorites("removed")

	writeJSON(w, http.StatusOK, map[string]string{"message": "Story removed from favorites"})
}
