package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/modernhn/modernhn/internal/hn"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "modernhn_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:4001"
	envWebPort  = "MODERNHN_WEB_PORT"
	envAPIURL   = "MODERNHN_API_URL"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)
	news := hn.NewClient()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/register", registerForm)
	r.Post("/register", registerSubmit(apiBase))
	r.Get("/logout", logout)
	r.Get("/", redirectStories)
	r.Get("/stories", storiesPage(apiBase, news))
	r.Get("/users", usersPage(apiBase))
	r.Get("/users/{id}/favorites", userFavoritesPage(apiBase))

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(apiBase))
		r.Get("/favorites", favoritesPage(apiBase))
		r.Post("/favorites", favoriteAdd(apiBase))
		r.Post("/favorites/{storyId}/remove", favoriteRemove(apiBase))
		r.Get("/profile", profilePage(apiBase))
		r.Post("/profile", profileUpdate(apiBase))
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireAuth redirects to /login if the cookie is missing or the API rejects
// the token, so expired sessions land on the login page before any page loads.
func requireAuth(apiBase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(cookieName)
			if err != nil || token.Value == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			_, status, _ := apiGet(apiBase, "/api/users/profile", token.Value)
			if status == http.StatusUnauthorized {
				clearAuthAndRedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectStories(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/stories", http.StatusFound)
}

func cookieToken(r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func loggedIn(r *http.Request) bool {
	return cookieToken(r) != ""
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/stories", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", nil)
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Email and password are required"})
			return
		}

		body, _ := json.Marshal(map[string]string{"email": email, "password": password})
		data, status, err := apiPost(apiBase, "/api/auth/login", "", body)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "login.html", map[string]string{"Error": apiMessage(data)})
			return
		}

		var out struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}

		next := r.URL.Query().Get("next")
		if next == "" {
			next = "/stories"
		}
		setAuthCookie(w, out.Token)
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func registerForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/stories", http.StatusFound)
		return
	}
	renderTemplate(w, "register.html", nil)
}

func registerSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		payload := map[string]interface{}{
			"username": strings.TrimSpace(r.FormValue("username")),
			"email":    strings.TrimSpace(r.FormValue("email")),
			"password": r.FormValue("password"),
		}
		var age int
		fmt.Sscanf(r.FormValue("age"), "%d", &age)
		payload["age"] = age
		if d := r.FormValue("description"); d != "" {
			payload["description"] = d
		}

		body, _ := json.Marshal(payload)
		data, status, err := apiPost(apiBase, "/api/auth/register", "", body)
		if err != nil {
			renderTemplate(w, "register.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusCreated {
			renderTemplate(w, "register.html", map[string]string{"Error": apiMessage(data)})
			return
		}

		var out struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "register.html", map[string]string{"Error": "Invalid register response"})
			return
		}
		setAuthCookie(w, out.Token)
		http.Redirect(w, r, "/stories", http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login with next=current path.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

func storiesPage(apiBase string, news *hn.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed := hn.FeedTop
		switch r.URL.Query().Get("feed") {
		case "new":
			feed = hn.FeedNew
		case "best":
			feed = hn.FeedBest
		}

		stories, err := news.Stories(r.Context(), feed, 30)
		if err != nil {
			renderTemplate(w, "stories.html", map[string]interface{}{
				"Error":    "Cannot reach Hacker News: " + err.Error(),
				"LoggedIn": loggedIn(r),
			})
			return
		}

		// Mark which stories are already favorited so the buttons make sense.
		saved := map[int]bool{}
		if tok := cookieToken(r); tok != "" {
			if data, status, err := apiGet(apiBase, "/api/favorites", tok); err == nil && status == http.StatusOK {
				var out struct {
					Favorites []struct {
						StoryID int `json:"storyId"`
					} `json:"favorites"`
				}
				if json.Unmarshal(data, &out) == nil {
					for _, f := range out.Favorites {
						saved[f.StoryID] = true
					}
				}
			}
		}

		type storyView struct {
			hn.Item
			Saved bool
		}
		views := make([]storyView, 0, len(stories))
		for _, s := range stories {
			views = append(views, storyView{Item: s, Saved: saved[s.ID]})
		}

		renderTemplate(w, "stories.html", map[string]interface{}{
			"Stories":  views,
			"Feed":     string(feed),
			"LoggedIn": loggedIn(r),
		})
	}
}

func favoritesPage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiGet(apiBase, "/api/favorites", cookieToken(r))
		if err != nil {
			renderTemplate(w, "favorites.html", map[string]interface{}{"Error": err.Error(), "LoggedIn": true})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		var out struct {
			Favorites []favoriteView `json:"favorites"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "favorites.html", map[string]interface{}{"Error": "Invalid favorites response", "LoggedIn": true})
			return
		}
		renderTemplate(w, "favorites.html", map[string]interface{}{"Favorites": out.Favorites, "LoggedIn": true})
	}
}

type favoriteView struct {
	StoryID int     `json:"storyId"`
	Title   string  `json:"title"`
	URL     *string `json:"url"`
	By      string  `json:"by"`
	Score   int     `json:"score"`
	Time    int64   `json:"time"`
}

func favoriteAdd(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		payload := map[string]interface{}{
			"title": r.FormValue("title"),
			"by":    r.FormValue("by"),
		}
		var storyID, score int
		var itemTime int64
		fmt.Sscanf(r.FormValue("storyId"), "%d", &storyID)
		fmt.Sscanf(r.FormValue("score"), "%d", &score)
		fmt.Sscanf(r.FormValue("time"), "%d", &itemTime)
		payload["storyId"] = storyID
		payload["score"] = score
		payload["time"] = itemTime
		if u := r.FormValue("url"); u != "" {
			payload["url"] = u
		}

		body, _ := json.Marshal(payload)
		_, status, err := apiPost(apiBase, "/api/favorites", cookieToken(r), body)
		if err == nil && status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		back := r.Header.Get("Referer")
		if back == "" {
			back = "/stories"
		}
		http.Redirect(w, r, back, http.StatusFound)
	}
}

func favoriteRemove(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID := chi.URLParam(r, "storyId")
		_, status, _ := apiDelete(apiBase, "/api/favorites/"+storyID, cookieToken(r))
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		back := r.Header.Get("Referer")
		if back == "" {
			back = "/favorites"
		}
		http.Redirect(w, r, back, http.StatusFound)
	}
}

func profilePage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiGet(apiBase, "/api/users/profile", cookieToken(r))
		if err != nil {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": err.Error(), "LoggedIn": true})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		var user map[string]interface{}
		if err := json.Unmarshal(data, &user); err != nil {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": "Invalid profile response", "LoggedIn": true})
			return
		}
		renderTemplate(w, "profile.html", map[string]interface{}{
			"User":     user,
			"APIBase":  apiBase,
			"LoggedIn": true,
			"Updated":  r.URL.Query().Get("updated") == "1",
		})
	}
}

// profileUpdate forwards the multipart form as-is to the API so the image
// upload passes through without being buffered to disk here.
func profileUpdate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, _ := http.NewRequest(http.MethodPut, apiBase+"/api/users/profile", r.Body)
		req.Header.Set("Content-Type", r.Header.Get("Content-Type"))
		req.Header.Set("Authorization", "Bearer "+cookieToken(r))

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": "Cannot reach API: " + err.Error(), "LoggedIn": true})
			return
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)

		if resp.StatusCode == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if resp.StatusCode != http.StatusOK {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": apiMessage(data), "LoggedIn": true})
			return
		}
		http.Redirect(w, r, "/profile?updated=1", http.StatusFound)
	}
}

func usersPage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiGet(apiBase, "/api/users/public", "")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "users.html", map[string]interface{}{"Error": "Cannot load users", "LoggedIn": loggedIn(r)})
			return
		}
		var out struct {
			Users []map[string]interface{} `json:"users"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "users.html", map[string]interface{}{"Error": "Invalid users response", "LoggedIn": loggedIn(r)})
			return
		}
		renderTemplate(w, "users.html", map[string]interface{}{"Users": out.Users, "LoggedIn": loggedIn(r)})
	}
}

func userFavoritesPage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		userData, status, err := apiGet(apiBase, "/api/users/"+id, "")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "user_favorites.html", map[string]interface{}{
				"Error":    "User not found or profile is private",
				"LoggedIn": loggedIn(r),
			})
			return
		}
		var userOut struct {
			User map[string]interface{} `json:"user"`
		}
		_ = json.Unmarshal(userData, &userOut)

		data, status, err := apiGet(apiBase, "/api/users/"+id+"/favorites", "")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "user_favorites.html", map[string]interface{}{
				"Error":    "Cannot load favorites",
				"User":     userOut.User,
				"LoggedIn": loggedIn(r),
			})
			return
		}
		var out struct {
			Favorites []favoriteView `json:"favorites"`
		}
		_ = json.Unmarshal(data, &out)

		renderTemplate(w, "user_favorites.html", map[string]interface{}{
			"User":      userOut.User,
			"Favorites": out.Favorites,
			"LoggedIn":  loggedIn(r),
		})
	}
}

// apiMessage extracts the "message" field from an API error body, falling back
// to the raw body.
func apiMessage(data []byte) string {
	var out struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &out); err == nil {
		if out.Message != "" {
			return out.Message
		}
		if len(out.Errors) > 0 {
			msgs := make([]string, 0, len(out.Errors))
			for _, e := range out.Errors {
				msgs = append(msgs, e.Message)
			}
			return strings.Join(msgs, "; ")
		}
	}
	return string(data)
}

// apiGet performs GET to the API with an optional bearer token.
func apiGet(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest(http.MethodGet, apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiPost performs POST to the API with an optional token and JSON body.
func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest(http.MethodPost, apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiDelete performs DELETE to the API with a token.
func apiDelete(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest(http.MethodDelete, apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template execute: %v", err)
	}
}
