// Package feed turns home-feed query parameters into a sort order
// and a filter predicate. Storage implementations translate both into
// their own query mechanism.
package feed

import (
	"net/url"
	"strings"
)

// Sort selects the ordering of a feed.
type Sort int

const (
	// SortNone imposes no ordering beyond the storage default.
	SortNone Sort = iota
	// SortDate orders by creation time, newest first.
	SortDate
	// SortSender orders by author first name, ascending.
	SortSender
	// SortEmoji orders by style emoji, ascending.
	SortEmoji
)

// ParseSort maps the "sort" query value to a Sort. Unknown values fall
// back to SortNone.
func ParseSort(s string) Sort {
	switch s {
	case "date":
		return SortDate
	case "sender":
		return SortSender
	case "emoji":
		return SortEmoji
	default:
		return SortNone
	}
}

// String returns the query value that selects s, or "" for SortNone.
func (s Sort) String() string {
	switch s {
	case SortDate:
		return "date"
	case SortSender:
		return "sender"
	case SortEmoji:
		return "emoji"
	default:
		return ""
	}
}

// Field names a text attribute a predicate can test.
type Field int

const (
	FieldMessage Field = iota
	FieldAuthorFirstName
	FieldAuthorLastName
)

// Predicate is one of MatchAll, Contains or Or.
type Predicate interface {
	isPredicate()
}

// MatchAll matches every record.
type MatchAll struct{}

// Contains matches when Field contains Text, ignoring case.
type Contains struct {
	Field Field
	Text  string
}

// Or matches when any of its predicates match. An empty Or matches nothing.
type Or []Predicate

func (MatchAll) isPredicate() {}
func (Contains) isPredicate() {}
func (Or) isPredicate()       {}

// CleanText drops invalid UTF-8 and NUL bytes, which no stored text can
// contain and which Postgres rejects as parameters.
func CleanText(text string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(text, ""), "\x00", "")
}

// Filter builds the predicate for the "filter" query value. Empty text
// matches everything; otherwise the text must appear in the message body or
// in the author's first or last name.
func Filter(text string) Predicate {
	text = CleanText(text)
	if text == "" {
		return MatchAll{}
	}
	return Or{
		Contains{Field: FieldMessage, Text: text},
		Contains{Field: FieldAuthorFirstName, Text: text},
		Contains{Field: FieldAuthorLastName, Text: text},
	}
}

// Query is the pair handed to storage.
type Query struct {
	Sort   Sort
	Filter Predicate
	// Text is the cleaned filter value, echoed back to the renderer.
	Text string
}

// Build derives a Query from the raw sort and filter values.
func Build(sort, filter string) Query {
	filter = CleanText(filter)
	return Query{
		Sort:   ParseSort(sort),
		Filter: Filter(filter),
		Text:   filter,
	}
}

// FromValues reads the "sort" and "filter" parameters.
func FromValues(v url.Values) Query {
	return Build(v.Get("sort"), v.Get("filter"))
}
