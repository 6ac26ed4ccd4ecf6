package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"kudos/internal/metrics"
	"kudos/internal/models"
	"kudos/internal/store"
)

const (
	maxKudoMessage  = 1000
	maxKudoBodySize = 64 << 10
)

// createKudoReq is the JSON payload for POST /api/kudos.
type createKudoReq struct {
	RecipientID string       `json:"recipientId"`
	Message     string       `json:"message"`
	Style       models.Style `json:"style"`
}

// handleCreateKudo records a kudo from the requester to another user.
func (s *Server) handleCreateKudo(w http.ResponseWriter, r *http.Request) {
	me, _ := requesterFromContext(r.Context())

	var req createKudoReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxKudoBodySize)).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	recipient, err := uuid.Parse(strings.TrimSpace(req.RecipientID))
	if err != nil {
		http.Error(w, "invalid recipient", http.StatusBadRequest)
		return
	}
	if recipient == me.ID {
		http.Error(w, "cannot send kudos to yourself", http.StatusBadRequest)
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		http.Error(w, "message required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(msg) > maxKudoMessage {
		http.Error(w, "message too long", http.StatusBadRequest)
		return
	}

	style, err := req.Style.Normalize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	k, err := s.store.CreateKudo(r.Context(), models.NewKudo{
		AuthorID:    me.ID,
		RecipientID: recipient,
		Message:     msg,
		Style:       style,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "recipient not found", http.StatusNotFound)
			return
		}
		log := s.requestLogger(r)
		log.Error().Err(err).Msg("create kudo failed")
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	metrics.KudosCreated.Inc()
	writeJSON(w, http.StatusCreated, k)
}
