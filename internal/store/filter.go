package store

import (
	"fmt"
	"strings"

	"kudos/internal/feed"
)

// Column each predicate field maps to in the feed query (k = kudos, a = author).
var fieldColumns = map[feed.Field]string{
	feed.FieldMessage:         "k.message",
	feed.FieldAuthorFirstName: "a.first_name",
	feed.FieldAuthorLastName:  "a.last_name",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// compilePredicate renders p as a SQL boolean expression. Placeholders are
// numbered after the args already present; the extended args slice is
// returned. MatchAll renders as "".
func compilePredicate(p feed.Predicate, args []any) (string, []any, error) {
	switch p := p.(type) {
	case nil, feed.MatchAll:
		return "", args, nil
	case feed.Contains:
		col, ok := fieldColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown filter field %d", p.Field)
		}
		args = append(args, likeEscaper.Replace(feed.CleanText(p.Text)))
		return fmt.Sprintf(`%s ILIKE '%%' || $%d || '%%' ESCAPE '\'`, col, len(args)), args, nil
	case feed.Or:
		if len(p) == 0 {
			return "FALSE", args, nil
		}
		terms := make([]string, 0, len(p))
		for _, sub := range p {
			var (
				term string
				err  error
			)
			term, args, err = compilePredicate(sub, args)
			if err != nil {
				return "", nil, err
			}
			if term == "" {
				// MatchAll inside a disjunction makes the whole disjunction true.
				term = "TRUE"
			}
			terms = append(terms, term)
		}
		return "(" + strings.Join(terms, " OR ") + ")", args, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

// orderBy renders the ORDER BY clause for s, or "" for no ordering.
func orderBy(s feed.Sort) string {
	switch s {
	case feed.SortDate:
		return "ORDER BY k.created_at DESC"
	case feed.SortSender:
		return "ORDER BY a.first_name ASC"
	case feed.SortEmoji:
		return "ORDER BY k.emoji ASC"
	default:
		return ""
	}
}
