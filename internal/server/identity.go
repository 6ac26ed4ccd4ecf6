package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"kudos/internal/models"
	"kudos/internal/store"
)

type ctxKey string

const requesterKey ctxKey = "requester"

// requesterFromContext returns the profile loaded by requireIdentity.
func requesterFromContext(ctx context.Context) (models.Profile, bool) {
	p, ok := ctx.Value(requesterKey).(models.Profile)
	return p, ok
}

// requireIdentity resolves the requester from the identity header set by the
// fronting proxy. Missing, malformed and unknown ids are all 401.
func (s *Server) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(s.identityHeader)
		if raw == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := s.store.GetProfile(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			log := s.requestLogger(r)
			log.Error().Err(err).Msg("requester lookup failed")
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), requesterKey, *p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
