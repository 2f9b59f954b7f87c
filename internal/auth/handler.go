package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/incontext-app/incontext/internal/flash"
	"github.com/incontext-app/incontext/internal/web"
	"github.com/incontext-app/incontext/pkg/logging"
)

// dummyHash keeps password comparison constant-time when the username is unknown.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const minPasswordLength = 8

// Handler provides HTTP handlers for registration, login, and logout.
type Handler struct {
	sys      System
	renderer *web.Renderer
	logger   *slog.Logger
	cookie   string
	ttl      time.Duration
}

// NewHandler creates an auth HTTP handler using the given session cookie name
// and session lifetime.
func NewHandler(sys System, renderer *web.Renderer, logger *slog.Logger, cookie string, ttl time.Duration) *Handler {
	return &Handler{
		sys:      sys,
		renderer: renderer,
		logger:   logging.WithSystem(logger, "auth"),
		cookie:   cookie,
		ttl:      ttl,
	}
}

// Register mounts the auth routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/register", h.RegisterPage)
	mux.HandleFunc("POST /auth/register", h.RegisterUser)
	mux.HandleFunc("GET /auth/login", h.LoginPage)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
}

type credentialsForm struct {
	Username string
}

// RegisterPage handles GET /auth/register.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "auth/register.html", "Register", credentialsForm{})
}

// RegisterUser handles POST /auth/register.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if msg := validateCredentials(username, password); msg != "" {
		flash.Add(w, r, flash.CategoryError, msg)
		http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if _, err := h.sys.CreateUser(r.Context(), username, string(hash)); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			flash.Add(w, r, flash.CategoryError, "User "+username+" is already registered.")
			http.Redirect(w, r, "/auth/register", http.StatusSeeOther)
			return
		}
		h.logger.Error("failed to register user", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// LoginPage handles GET /auth/login.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "auth/login.html", "Log In", credentialsForm{})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.sys.UserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Dummy comparison so unknown usernames take as long as bad passwords.
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			h.rejectLogin(w, r, username)
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.rejectLogin(w, r, username)
		return
	}

	token, err := sessionToken()
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	expires := time.Now().Add(h.ttl)
	if err := h.sys.CreateSession(r.Context(), token, user.ID, expires); err != nil {
		h.logger.Error("failed to create session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login successful", "username", username)
	http.Redirect(w, r, "/agents/", http.StatusSeeOther)
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie); err == nil {
		if err := h.sys.DeleteSession(r.Context(), c.Value); err != nil {
			h.logger.Error("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) rejectLogin(w http.ResponseWriter, r *http.Request, username string) {
	h.logger.Debug("login rejected", "username", username)
	flash.Add(w, r, flash.CategoryError, "Incorrect username or password.")
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func validateCredentials(username, password string) string {
	if username == "" {
		return "Username is required."
	}
	if password == "" {
		return "Password is required."
	}
	if len(password) < minPasswordLength {
		return "Password must be at least 8 characters."
	}
	return ""
}

// sessionToken generates a cryptographically random session identifier.
func sessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
