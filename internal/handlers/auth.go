package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/modernhn/modernhn/internal/auth"
	"github.com/modernhn/modernhn/internal/metrics"
	"github.com/modernhn/modernhn/internal/repo"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	Users  *repo.UserRepo
	Tokens *auth.Tokens
	Dev    bool
}

type registerInput struct {
	Username          string `json:"username" validate:"min=3"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"min=8"`
	Age               int    `json:"age" validate:"gte=13"`
	Description       string `json:"description"`
	ProfileVisibility *bool  `json:"profileVisibility"`
}

// registerMessages mirrors the wording the frontend already expects per field.
var registerMessages = map[string]string{
	"Username": "Username must be at least 3 characters",
	"Email":    "Please provide a valid email",
	"Password": "Password must be at least 8 characters",
	"Age":      "Age must be at least 13",
}

func validationFieldErrors(err error, messages map[string]string) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "Invalid request body"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = "Invalid value"
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// Register creates a new account, issues a token, and returns the safe user
// projection. Every violated validation rule is reported; the uniqueness check
// deliberately does not reveal whether username or email collided.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		slog.Warn("registration validation failed", "username", input.Username)
		JSONValidationError(w, validationFieldErrors(err, registerMessages))
		return
	}

	taken, err := h.Users.UsernameOrEmailTaken(r.Context(), input.Username, input.Email)
	if err != nil {
		slog.Error("registration uniqueness check failed", "error", err)
		JSONInternal(w, "Failed to register user", err, h.Dev)
		return
	}
	if taken {
		slog.Warn("registration rejected: username or email already in use",
			"username", input.Username, "email", input.Email)
		JSONError(w, "Username or email already in use", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		slog.Error("registration hash failed", "error", err)
		JSONInternal(w, "Failed to register user", err, h.Dev)
		return
	}

	visibility := true
	if input.ProfileVisibility != nil {
		visibility = *input.ProfileVisibility
	}

	user, err := h.Users.Create(r.Context(), input.Username, input.Email, hash, input.Age, input.Description, visibility)
	if err != nil {
		// The unique constraints are the authoritative guard; a concurrent
		// registration slipping past the pre-check lands here.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			JSONError(w, "Username or email already in use", http.StatusBadRequest)
			return
		}
		slog.Error("registration insert failed", "error", err)
		JSONInternal(w, "Failed to register user", err, h.Dev)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("registration token issue failed", "user_id", user.ID, "error", err)
		JSONInternal(w, "Failed to register user", err, h.Dev)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	metrics.IncRegistrations()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"token":   token,
		"user":    user.Safe(),
	})
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"Email":    "Please provide a valid email",
	"Password": "Password is required",
}

// Login verifies credentials and issues a fresh token. Unknown email and wrong
// password are indistinguishable to the caller.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, validationFieldErrors(err, loginMessages))
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Error("login lookup failed", "error", err)
			JSONInternal(w, "Failed to login", err, h.Dev)
			return
		}
		slog.Warn("login failed: unknown email", "email", input.Email)
		metrics.IncLogins("failure")
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		slog.Warn("login failed: wrong password", "user_id", user.ID, "username", user.Username)
		metrics.IncLogins("failure")
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		slog.Error("login token issue failed", "user_id", user.ID, "error", err)
		JSONInternal(w, "Failed to login", err, h.Dev)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	metrics.IncLogins("success")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    user.Safe(),
	})
}
