package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avvvet/hobheap-services/internal/notesvc/auth"
	"github.com/avvvet/hobheap-services/internal/notesvc/service"
	"github.com/avvvet/hobheap-services/internal/ratelimit"
	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokens    *auth.TokenAuth
	users     *service.UserService
	auth      *service.AuthService
	cards     *service.CardService
	tags      *service.TagService
	documents *service.DocumentService
}

func NewHandler(
	tokens *auth.TokenAuth,
	users *service.UserService,
	authService *service.AuthService,
	cards *service.CardService,
	tags *service.TagService,
	documents *service.DocumentService,
) *Handler {
	return &Handler{
		tokens:    tokens,
		users:     users,
		auth:      authService,
		cards:     cards,
		tags:      tags,
		documents: documents,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("error [CreateResponse] unable to encode response: %v", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, code int, message string, data interface{}) {
	h.CreateResponse(w, Response{Message: message, Code: code, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, code int, message string) {
	h.CreateResponse(w, Response{Message: message, Code: code, Error: http.StatusText(code)})
}

// respondError maps service errors to status codes. Causes of 500s are
// logged and never returned to the client.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var exceeded *ratelimit.ExceededError
	switch {
	case errors.As(err, &exceeded):
		w.Header().Set("Retry-After", strconv.Itoa(ratelimit.CeilSeconds(exceeded.RetryAfter)))
		h.fail(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.fail(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrVersionConflict):
		h.fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		h.fail(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrPhoneTaken):
		h.fail(w, http.StatusBadRequest, "Phone already registered")
	case errors.Is(err, service.ErrUnknownUser):
		h.fail(w, http.StatusBadRequest, "User not registered")
	case errors.Is(err, service.ErrInvalidCode):
		h.fail(w, http.StatusBadRequest, "Invalid or expired code")
	case errors.Is(err, service.ErrDuplicatePlacement):
		h.fail(w, http.StatusBadRequest, "Card already added")
	case errors.Is(err, service.ErrInvalidPlacement), errors.Is(err, service.ErrInvalidInput):
		h.fail(w, http.StatusBadRequest, err.Error())
	default:
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Errorf("request failed: %v", err)
		h.fail(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "note service is running",
		Code:    http.StatusOK,
		Data:    map[string]string{"status": "ok"},
	})
}

// decode reads a JSON body. Unknown fields are ignored.
func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// page reads limit and offset; missing values are zero.
func page(r *http.Request) (limit, offset int, ok bool) {
	q := r.URL.Query()
	var err error
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, false
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, false
		}
	}
	return limit, offset, true
}
