package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kudos/internal/upload"
)

const uploadTimeout = 5 * time.Minute

type avatarResp struct {
	ImageURL string `json:"imageUrl"`
}

// handleAvatar relays the profile-pic field to object storage and points
// the requester's profile at the stored object. A form without the field
// succeeds with an empty imageUrl and leaves the profile untouched.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	me, _ := requesterFromContext(r.Context())

	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	log := s.requestLogger(r)

	locator, err := s.relay.UploadRequest(r.WithContext(ctx))
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, upload.ErrStorage):
			log.Error().Err(err).Msg("avatar upload failed")
			http.Error(w, "upload failed", http.StatusBadGateway)
		default:
			log.Warn().Err(err).Msg("rejected avatar body")
			http.Error(w, "bad multipart", http.StatusBadRequest)
		}
		return
	}

	if locator != "" {
		if err := s.store.SetProfilePicture(r.Context(), me.ID, locator); err != nil {
			log.Error().Err(err).Str("locator", locator).Msg("profile update failed")
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		log.Info().Str("user", me.ID.String()).Str("locator", locator).Msg("avatar stored")
	}

	writeJSON(w, http.StatusOK, avatarResp{ImageURL: locator})
}
