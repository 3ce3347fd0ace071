package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength is the maximum number of characters accepted in a search query.
const MaxQueryLength = 1000

// SearchSource represents the source for searching tracks.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

// ValidateQuery trims raw user input and checks that it is usable as a search query.
// The returned string is the canonical form used as the search cache key.
func ValidateQuery(raw string) (string, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return "", fmt.Errorf("%w: query must not be empty", ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return "", fmt.Errorf("%w: query must be at most %d characters", ErrInvalidQuery, MaxQueryLength)
	}
	return query, nil
}

// SearchQuery represents a query for searching tracks.
type SearchQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
	IsURL  bool         // Whether the query is a direct URL
}

// NewSearchQuery creates a SearchQuery from user input.
// If the input is a URL, it returns a direct query.
// Otherwise, it uses YouTube search as the default.
func NewSearchQuery(input string) *SearchQuery {
	input = strings.TrimSpace(input)

	if isURL(input) {
		return &SearchQuery{
			Query:  input,
			Source: SourceDirect,
			IsURL:  true,
		}
	}

	return &SearchQuery{
		Query:  input,
		Source: SourceYouTube,
		IsURL:  false,
	}
}

// LavalinkQuery returns the query string formatted for Lavalink.
func (q *SearchQuery) LavalinkQuery() string {
	if q.IsURL {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// isURL checks if the input looks like a URL.
func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
