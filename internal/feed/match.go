package feed

import (
	"slices"
	"strings"

	"kudos/internal/models"
)

// Match evaluates p against a single kudo in memory.
func Match(p Predicate, k models.Kudo) bool {
	switch p := p.(type) {
	case nil, MatchAll:
		return true
	case Contains:
		return containsFold(fieldValue(p.Field, k), p.Text)
	case Or:
		for _, sub := range p {
			if Match(sub, k) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func fieldValue(f Field, k models.Kudo) string {
	switch f {
	case FieldMessage:
		return k.Message
	case FieldAuthorFirstName:
		return k.Author.FirstName
	case FieldAuthorLastName:
		return k.Author.LastName
	default:
		return ""
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Select returns the kudos matching p, keeping their order.
func Select(p Predicate, kudos []models.Kudo) []models.Kudo {
	out := make([]models.Kudo, 0, len(kudos))
	for _, k := range kudos {
		if Match(p, k) {
			out = append(out, k)
		}
	}
	return out
}

// Apply orders kudos in place. SortNone leaves them as they are.
func (s Sort) Apply(kudos []models.Kudo) {
	var cmp func(a, b models.Kudo) int
	switch s {
	case SortDate:
		cmp = func(a, b models.Kudo) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortSender:
		cmp = func(a, b models.Kudo) int { return strings.Compare(a.Author.FirstName, b.Author.FirstName) }
	case SortEmoji:
		cmp = func(a, b models.Kudo) int { return strings.Compare(a.Style.Emoji, b.Style.Emoji) }
	default:
		return
	}
	slices.SortStableFunc(kudos, cmp)
}
