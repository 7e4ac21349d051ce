package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/dukerupert/flourish/internal/auth"
	"github.com/dukerupert/flourish/internal/email"
	"github.com/dukerupert/flourish/internal/store"
)

const (
	sessionCookieName = "flourish_session"
	maxCodeAttempts   = 5
)

type AuthHandler struct {
	userStore      *store.UserStore
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	emailClient    *email.Client
	secureCookies  bool
	logger         *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, mls *store.MagicLinkStore, ec *email.Client, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:      us,
		sessionStore:   ss,
		magicLinkStore: mls,
		emailClient:    ec,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register creates the account and emails a verification code. The session
// is only issued once the code is verified.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if !validEmail(req.Email) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "valid email is required"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register: lookup user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "an account with this email already exists"})
		return
	}

	if _, err := h.userStore.Create(req.Email, req.Name); err != nil {
		h.logger.Error("register: create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		return
	}

	h.sendCode(w, req.Email, "register")
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login emails a sign-in code to an existing account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = normalizeEmail(req.Email)
	if !validEmail(req.Email) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "valid email is required"})
		return
	}

	u, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login: lookup user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	if u == nil {
		// No account, but answer exactly as if a code was sent so the
		// response never reveals whether an email is registered.
		writeJSON(w, http.StatusOK, map[string]string{"message": "code sent"})
		return
	}

	h.sendCode(w, req.Email, "login")
}

func (h *AuthHandler) sendCode(w http.ResponseWriter, emailAddr, purpose string) {
	ml, err := h.magicLinkStore.Create(emailAddr, purpose)
	if err != nil {
		h.logger.Error("create sign-in code", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create sign-in code"})
		return
	}

	if err := h.emailClient.SendAuthCode(emailAddr, ml.Token, purpose); err != nil {
		h.logger.Error("send sign-in code", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to send email"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "code sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify checks the emailed code and issues the session cookie.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and code are required"})
		return
	}

	ml, err := h.magicLinkStore.GetLatestByEmail(req.Email)
	if err != nil {
		h.logger.Error("verify: get code", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "verification failed"})
		return
	}
	if ml == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired code"})
		return
	}
	if ml.Attempts >= maxCodeAttempts {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "too many attempts, request a new code"})
		return
	}

	if ml.Token != req.Code {
		if _, err := h.magicLinkStore.IncrementAttempts(ml.ID); err != nil {
			h.logger.Error("verify: increment attempts", "error", err)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired code"})
		return
	}

	if err := h.magicLinkStore.MarkUsed(ml.ID); err != nil {
		h.logger.Error("verify: mark used", "error", err)
	}

	u, err := h.userStore.GetByEmail(req.Email)
	if err != nil || u == nil {
		h.logger.Error("verify: lookup user", "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}

	sess, err := h.sessionStore.Create(u.ID)
	if err != nil {
		h.logger.Error("verify: create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, u)
}

// Logout deletes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if ok {
		if err := h.sessionStore.Delete(ac.SessionID); err != nil {
			h.logger.Error("logout: delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}
