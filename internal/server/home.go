package server

import (
	"net/http"
	"strconv"

	"kudos/internal/feed"
	"kudos/internal/metrics"
	"kudos/internal/models"
	"kudos/internal/store"
)

type homeResponse struct {
	User        models.Profile   `json:"user"`
	Users       []models.Profile `json:"users"`
	Kudos       []models.Kudo    `json:"kudos"`
	RecentKudos []models.Kudo    `json:"recentKudos"`
	Sort        string           `json:"sort"`
	Filter      string           `json:"filter"`
}

// handleHome serves the requester's feed along with the user list and the
// most recent kudos overall. The feed query is rebuilt on every request.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	me, _ := requesterFromContext(r.Context())
	q := feed.FromValues(r.URL.Query())
	sortLabel := q.Sort.String()
	if sortLabel == "" {
		sortLabel = "none"
	}
	metrics.FeedQueries.WithLabelValues(sortLabel, strconv.FormatBool(q.Text != "")).Inc()

	log := s.requestLogger(r)

	users, err := s.store.OtherProfiles(r.Context(), me.ID)
	if err != nil {
		log.Error().Err(err).Msg("list users failed")
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	kudos, err := s.store.FilteredKudos(r.Context(), me.ID, q.Sort, q.Filter)
	if err != nil {
		log.Error().Err(err).Str("sort", q.Sort.String()).Str("filter", q.Text).Msg("feed query failed")
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	recent, err := s.store.RecentKudos(r.Context(), store.RecentLimit)
	if err != nil {
		log.Error().Err(err).Msg("recent kudos failed")
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, homeResponse{
		User:        me,
		Users:       users,
		Kudos:       kudos,
		RecentKudos: recent,
		Sort:        q.Sort.String(),
		Filter:      q.Text,
	})
}
