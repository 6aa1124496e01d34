package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avvvet/hobheap-services/internal/notesvc/auth"
	"github.com/avvvet/hobheap-services/internal/notesvc/service"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type ctxKey struct{}

// Authenticator runs after jwtauth.Verifier. It rejects missing, invalid
// and expired tokens as well as tokens of users that no longer exist, and
// stores the caller's id in the request context.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			h.fail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		userID, err := auth.SubjectFromClaims(claims)
		if err != nil {
			h.fail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		if _, err := h.users.GetUser(r.Context(), userID); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				log.WithFields(log.Fields{"user_id": userID}).Warn("token for unknown user")
				h.fail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			h.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}
