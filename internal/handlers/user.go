package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/modernhn/modernhn/internal/auth"
	"github.com/modernhn/modernhn/internal/middleware"
	"github.com/modernhn/modernhn/internal/repo"
	"github.com/modernhn/modernhn/internal/uploads"
)

// DefaultAvatarURL is the hint returned when a user has no avatar to show.
const DefaultAvatarURL = "/placeholder.svg"

// UserHandler handles profile and public user reads.
type UserHandler struct {
	Users     *repo.UserRepo
	Favorites *repo.FavoriteRepo
	Uploads   *uploads.Store
	Dev       bool
}

// Profile returns the authenticated caller's own record. This path bypasses
// the visibility filter: the caller already proved ownership.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONInternal(w, "Failed to get profile", nil, h.Dev)
		return
	}
	writeJSON(w, http.StatusOK, user.Safe())
}

// UpdateProfile applies a partial profile update from a multipart form. Any
// subset of username, email, age, description, profileVisibility, password, and
// a profileImage file may be supplied.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		JSONInternal(w, "Failed to update profile", nil, h.Dev)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		JSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	var upd repo.UserUpdate
	var fieldErrs []FieldError

	if v := r.FormValue("username"); v != "" {
		if len(v) < 3 {
			fieldErrs = append(fieldErrs, FieldError{Field: "username", Message: "Username must be at least 3 characters"})
		} else {
			upd.Username = &v
		}
	}
	if v := r.FormValue("email"); v != "" {
		if validate.Var(v, "email") != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: "email", Message: "Please provide a valid email"})
		} else {
			upd.Email = &v
		}
	}
	if v := r.FormValue("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil || age < 13 {
			fieldErrs = append(fieldErrs, FieldError{Field: "age", Message: "Age must be at least 13"})
		} else {
			upd.Age = &age
		}
	}
	if vs, ok := r.MultipartForm.Value["description"]; ok && len(vs) > 0 {
		upd.Description = &vs[0]
	}
	if v := r.FormValue("profileVisibility"); v != "" {
		vis, err := strconv.ParseBool(v)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: "profileVisibility", Message: "Profile visibility must be a boolean"})
		} else {
			upd.ProfileVisibility = &vis
		}
	}
	if v := r.FormValue("password"); v != "" {
		if len(v) < 8 {
			fieldErrs = append(fieldErrs, FieldError{Field: "password", Message: "Password must be at least 8 characters"})
		} else {
			hash, err := auth.HashPassword(v)
			if err != nil {
				slog.Error("profile update hash failed", "user_id", user.ID, "error", err)
				JSONInternal(w, "Failed to update profile", err, h.Dev)
				return
			}
			upd.PasswordHash = &hash
		}
	}
	if len(fieldErrs) > 0 {
		JSONValidationError(w, fieldErrs)
		return
	}

	// Changed username/email must be re-checked for uniqueness, excluding the
	// caller. Unlike registration, the update path does say which field collided.
	if upd.Username != nil && *upd.Username != user.Username {
		taken, err := h.Users.UsernameTakenByOther(r.Context(), *upd.Username, user.ID)
		if err != nil {
			JSONInternal(w, "Failed to update profile", err, h.Dev)
			return
		}
		if taken {
			JSONError(w, "Username already in use", http.StatusBadRequest)
			return
		}
	}
	if upd.Email != nil && *upd.Email != user.Email {
		taken, err := h.Users.EmailTakenByOther(r.Context(), *upd.Email, user.ID)
		if err != nil {
			JSONInternal(w, "Failed to update profile", err, h.Dev)
			return
		}
		if taken {
			JSONError(w, "Email already in use", http.StatusBadRequest)
			return
		}
	}

	var oldImage *string
	if file, header, err := r.FormFile("profileImage"); err == nil {
		defer file.Close()
		urlPath, err := h.Uploads.Save(file, header)
		if err != nil {
			if errors.Is(err, uploads.ErrNotImage) {
				JSONError(w, "Only image files are allowed", http.StatusBadRequest)
				return
			}
			slog.Error("profile image save failed", "user_id", user.ID, "error", err)
			JSONInternal(w, "Failed to update profile", err, h.Dev)
			return
		}
		upd.ProfileImageURL = &urlPath
		oldImage = user.ProfileImageURL
	}

	updated, err := h.Users.Update(r.Context(), user.ID, upd)
	if err != nil {
		slog.Error("profile update failed", "user_id", user.ID, "error", err)
		JSONInternal(w, "Failed to update profile", err, h.Dev)
		return
	}

	// Replacing the image deletes the old file. Best-effort only: the update
	// has already been applied.
	if upd.ProfileImageURL != nil && oldImage != nil {
		h.Uploads.Remove(*oldImage)
	}

	slog.Info("profile updated", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    updated.Safe(),
	})
}

// PublicUsers lists the public fields of every user with a visible profile.
func (h *UserHandler) PublicUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListPublic(r.Context())
	if err != nil {
		slog.Error("public users list failed", "error", err)
		JSONInternal(w, "Failed to get users", err, h.Dev)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetUser returns one user's public fields. Private and nonexistent users get
// the same 404 so callers cannot probe for private profiles.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetPublicByID(r.Context(), id)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("get user failed", "user_id", id, "error", err)
			JSONInternal(w, "Failed to get user", err, h.Dev)
			return
		}
		JSONError(w, "User not found or profile is private", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UserFavorites returns a public user's favorites. The visibility gate applies
// to everyone, including other authenticated users.
func (h *UserHandler) UserFavorites(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if _, err := h.Users.GetPublicByID(r.Context(), id); err != nil {
		if err != sql.ErrNoRows {
			slog.Error("get user favorites failed", "user_id", id, "error", err)
			JSONInternal(w, "Failed to get user favorites", err, h.Dev)
			return
		}
		JSONError(w, "User not found or profile is private", http.StatusNotFound)
		return
	}

	favorites, err := h.Favorites.ListByUser(r.Context(), id)
	if err != nil {
		slog.Error("get user favorites failed", "user_id", id, "error", err)
		JSONInternal(w, "Failed to get user favorites", err, h.Dev)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

// Avatar returns a public user's avatar URL, or a 404 carrying the default
// avatar hint when the user is missing, private, or has no image set.
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetPublicByID(r.Context(), id)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("get avatar failed", "user_id", id, "error", err)
			JSONInternal(w, "Failed to get avatar", err, h.Dev)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message": "User not found or profile is private",
			"avatar":  DefaultAvatarURL,
		})
		return
	}
	if user.ProfileImageURL == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"message": "User has no avatar",
			"avatar":  DefaultAvatarURL,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar": *user.ProfileImageURL})
}
