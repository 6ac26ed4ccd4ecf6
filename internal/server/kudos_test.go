package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/internal/feed"
	"kudos/internal/models"
)

func TestCreateKudo(t *testing.T) {
	env := newTestEnv(t)

	body := `{"recipientId":"` + env.me.ID.String() + `","message":"  great demo  ","style":{"emoji":"PARTY"}}`
	rr := env.do(t, http.MethodPost, "/api/kudos", strings.NewReader(body), &env.anna)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var k models.Kudo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &k))
	assert.Equal(t, "great demo", k.Message)
	assert.Equal(t, env.anna.ID, k.Author.ID)
	assert.Equal(t, models.Style{Emoji: models.EmojiParty, BackgroundColor: models.ColorRed, TextColor: models.ColorWhite}, k.Style)

	got, err := env.store.FilteredKudos(t.Context(), env.me.ID, feed.SortNone, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestCreateKudo_Validation(t *testing.T) {
	env := newTestEnv(t)
	me := env.me.ID.String()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"bad recipient", `{"recipientId":"x","message":"hi"}`, http.StatusBadRequest},
		{"blank message", `{"recipientId":"` + me + `","message":"   "}`, http.StatusBadRequest},
		{"too long", `{"recipientId":"` + me + `","message":"` + strings.Repeat("a", 1001) + `"}`, http.StatusBadRequest},
		{"bad emoji", `{"recipientId":"` + me + `","message":"hi","style":{"emoji":"SKULL"}}`, http.StatusBadRequest},
		{"self", `{"recipientId":"` + env.anna.ID.String() + `","message":"hi"}`, http.StatusBadRequest},
		{"unknown recipient", `{"recipientId":"` + uuid.NewString() + `","message":"hi"}`, http.StatusNotFound},
		{"max length", `{"recipientId":"` + me + `","message":"` + strings.Repeat("é", 1000) + `"}`, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/kudos", strings.NewReader(tt.body), &env.anna)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestCreateKudo_StorageFailure(t *testing.T) {
	env := newTestEnv(t, withFailures(&failingStore{failWrite: true}))

	body := `{"recipientId":"` + env.me.ID.String() + `","message":"hi"}`
	rr := env.do(t, http.MethodPost, "/api/kudos", strings.NewReader(body), &env.anna)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
