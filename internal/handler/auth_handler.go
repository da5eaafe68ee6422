package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"delrio-stay/internal/middleware"
	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/session"
	"delrio-stay/internal/view"
)

// sessionWriter is the part of session.Store the auth pages change.
type sessionWriter interface {
	Login(w http.ResponseWriter, r *http.Request, token string, companions session.Companions) (model.Session, error)
	Logout(w http.ResponseWriter, r *http.Request) error
}

type AuthHandler struct {
	pages    *Pages
	accounts *service.AccountService
	sessions sessionWriter
}

func NewAuthHandler(pages *Pages, accounts *service.AccountService, sessions sessionWriter) *AuthHandler {
	return &AuthHandler{pages: pages, accounts: accounts, sessions: sessions}
}

var (
	loginMeta    = pageMeta{name: "login", title: "Log in", active: "login"}
	registerMeta = pageMeta{name: "register", title: "Register", active: "register"}
)

type loginPage struct {
	Email string
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.pages.render(w, r, http.StatusOK, loginMeta, loginPage{}, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.render(w, r, http.StatusBadRequest, loginMeta, loginPage{}, view.Error("Please fill in all fields"))
		return
	}

	email := r.PostFormValue("email")
	page := loginPage{Email: email}

	result, err := h.accounts.Authenticate(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		message := messageFor(err, "Invalid credentials. Please try again.")
		if errors.Is(err, model.ErrNoToken) {
			message = "No token received from server"
		}
		slog.InfoContext(r.Context(), "login failed", "email", email, "error", err)
		h.pages.render(w, r, statusFor(err), loginMeta, page, view.Error(message))
		return
	}

	_, err = h.sessions.Login(w, r, result.Token, session.Companions{
		Role:      result.Role,
		ID:        result.ID.String(),
		Email:     result.Email,
		FirstName: result.FirstName,
		LastName:  result.LastName,
	})
	if err != nil {
		slog.WarnContext(r.Context(), "login token rejected", "email", email, "error", err)
		h.pages.render(w, r, http.StatusUnauthorized, loginMeta, page, view.Error("Invalid or expired token"))
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "email", result.Email)
	h.pages.redirect(w, r, "/", view.Success("Welcome back!"))
}

type registerPage struct {
	Form model.RegisterForm
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, registerMeta, registerPage{}, nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.render(w, r, http.StatusBadRequest, registerMeta, registerPage{}, view.Error("Please fill in all fields"))
		return
	}

	form := model.RegisterForm{
		FirstName:       r.PostFormValue("firstName"),
		LastName:        r.PostFormValue("lastName"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	if err := h.accounts.Register(r.Context(), form); err != nil {
		// Passwords are never echoed back.
		form.Password, form.ConfirmPassword = "", ""
		h.pages.render(w, r, statusFor(err), registerMeta, registerPage{Form: form}, view.Error(serverMessageFor(err, "Failed to create account.")))
		return
	}

	h.pages.redirect(w, r, "/login", view.Success("Account created successfully!"))
}

// Logout always ends on the login page, signed in or not.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		slog.WarnContext(r.Context(), "logout storage error", "error", err)
	}
	h.pages.redirect(w, r, "/login", view.Info("You have been logged out"))
}
