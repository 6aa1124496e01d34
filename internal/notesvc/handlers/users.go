package handlers

import (
	"net/http"
	"strings"

	"github.com/avvvet/hobheap-services/internal/notesvc/service"
)

type registerRequest struct {
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), service.RegisterInput{Email: req.Email, Phone: req.Phone})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "user registered", u)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "user", u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := page(r)
	if !ok {
		h.fail(w, http.StatusBadRequest, "invalid limit or offset")
		return
	}

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "users", users)
}

// emailParam reads the required email query parameter.
func (h *Handler) emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		h.fail(w, http.StatusBadRequest, "email is required")
		return "", false
	}
	return email, true
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email, ok := h.emailParam(w, r)
	if !ok {
		return
	}

	tok, err := h.auth.Login(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "login successful", tok)
}

func (h *Handler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	email, ok := h.emailParam(w, r)
	if !ok {
		return
	}

	issued, err := h.auth.RequestOTP(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "otp sent", issued)
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	email, ok := h.emailParam(w, r)
	if !ok {
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		h.fail(w, http.StatusBadRequest, "code is required")
		return
	}

	tok, err := h.auth.VerifyOTP(r.Context(), email, code)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "otp verified", tok)
}
