package feed

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos/internal/models"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want Sort
	}{
		{"date", SortDate},
		{"sender", SortSender},
		{"emoji", SortEmoji},
		{"", SortNone},
		{"Date", SortNone},
		{"recipient", SortNone},
		{"date;drop table kudos", SortNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSort(tt.in), "ParseSort(%q)", tt.in)
	}
}

func TestSortStringRoundTrip(t *testing.T) {
	for _, s := range []Sort{SortNone, SortDate, SortSender, SortEmoji} {
		assert.Equal(t, s, ParseSort(s.String()))
	}
}

func TestFilter_EmptyMatchesAll(t *testing.T) {
	assert.Equal(t, MatchAll{}, Filter(""))
}

func TestFilter_Shape(t *testing.T) {
	p := Filter("ana")
	or, ok := p.(Or)
	require.True(t, ok, "expected Or, got %T", p)
	require.Len(t, or, 3)
	assert.Equal(t, Contains{Field: FieldMessage, Text: "ana"}, or[0])
	assert.Equal(t, Contains{Field: FieldAuthorFirstName, Text: "ana"}, or[1])
	assert.Equal(t, Contains{Field: FieldAuthorLastName, Text: "ana"}, or[2])
}

func TestFilter_DropsBytesStorageRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Predicate
	}{
		{"invalid utf8 only", "\xff", MatchAll{}},
		{"nul only", "\x00", MatchAll{}},
		{"mixed", "a\xffn\x00a", Filter("ana")},
		{"valid unicode kept", "zoë", Filter("zoë")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filter(tt.in))
		})
	}

	q := FromValues(url.Values{"filter": {"\xffBob\x00"}})
	assert.Equal(t, "Bob", q.Text)
	assert.Equal(t, Filter("Bob"), q.Filter)
}

func TestFromValues(t *testing.T) {
	q := FromValues(url.Values{"sort": {"sender"}, "filter": {"Bob"}})
	assert.Equal(t, SortSender, q.Sort)
	assert.Equal(t, "Bob", q.Text)
	assert.Equal(t, Filter("Bob"), q.Filter)

	q = FromValues(url.Values{})
	assert.Equal(t, SortNone, q.Sort)
	assert.Equal(t, MatchAll{}, q.Filter)
}

func kudo(msg, first, last, emoji string, at time.Time) models.Kudo {
	return models.Kudo{
		ID:        uuid.New(),
		Message:   msg,
		Style:     models.Style{Emoji: emoji},
		Author:    models.Profile{ID: uuid.New(), FirstName: first, LastName: last},
		CreatedAt: at,
	}
}

func TestMatch(t *testing.T) {
	k := kudo("Great DEMO today", "Anna", "Kowalski", models.EmojiParty, time.Now())

	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"demo", true},
		{"GREAT", true},
		{"ann", true},
		{"KOWAL", true},
		{"bob", false},
		{"anna k", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(Filter(tt.text), k), "filter %q", tt.text)
	}
}

func TestMatch_EmptyOrMatchesNothing(t *testing.T) {
	k := kudo("x", "y", "z", models.EmojiParty, time.Now())
	assert.False(t, Match(Or{}, k))
	assert.True(t, Match(nil, k))
}

func TestSortApply(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := kudo("a", "Carla", "X", models.EmojiThumbsUp, base)
	b := kudo("b", "Anna", "X", models.EmojiParty, base.Add(2*time.Hour))
	c := kudo("c", "Bob", "X", models.EmojiHandsUp, base.Add(time.Hour))

	in := func() []models.Kudo { return []models.Kudo{a, b, c} }

	got := in()
	SortDate.Apply(got)
	assert.Equal(t, []models.Kudo{b, c, a}, got)

	got = in()
	SortSender.Apply(got)
	assert.Equal(t, []models.Kudo{b, c, a}, got)

	got = in()
	SortEmoji.Apply(got)
	assert.Equal(t, []models.Kudo{c, b, a}, got)

	got = in()
	SortNone.Apply(got)
	assert.Equal(t, in(), got)
}

func TestDateFilterExample(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	anna1 := kudo("thanks for the review", "Anna", "K.", models.EmojiThumbsUp, base)
	anna2 := kudo("nice slides", "Anna", "K.", models.EmojiParty, base.Add(time.Hour))
	bob := kudo("good job", "Bob", "L.", models.EmojiThumbsUp, base.Add(2*time.Hour))
	bobBanana := kudo("you are bananas", "Bob", "L.", models.EmojiHandsUp, base.Add(3*time.Hour))

	q := Build("date", "ana")
	got := Select(q.Filter, []models.Kudo{anna1, bob, anna2, bobBanana})
	q.Sort.Apply(got)

	assert.Equal(t, []models.Kudo{bobBanana, anna2, anna1}, got)
}
