package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain query", input: "valid query", want: "valid query"},
		{name: "trims surrounding whitespace", input: "  hi  ", want: "hi"},
		{name: "empty", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "tabs and newlines", input: "\t\n ", wantErr: true},
		{name: "exactly max length", input: strings.Repeat("a", MaxQueryLength), want: strings.Repeat("a", MaxQueryLength)},
		{name: "one over max length", input: strings.Repeat("a", MaxQueryLength+1), wantErr: true},
		{name: "length checked after trimming", input: "  " + strings.Repeat("a", MaxQueryLength) + "  ", want: strings.Repeat("a", MaxQueryLength)},
		{name: "multibyte characters counted as runes", input: strings.Repeat("é", MaxQueryLength), want: strings.Repeat("é", MaxQueryLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateQuery(tt.input)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Fatalf("expected ErrInvalidQuery, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateQuery() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestNewSearchQuery(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedQuery  string
		expectedSource SearchSource
		expectedIsURL  bool
	}{
		{
			name:           "search term",
			input:          "never gonna give you up",
			expectedQuery:  "never gonna give you up",
			expectedSource: SourceYouTube,
		},
		{
			name:           "search term with whitespace",
			input:          "  hello world  ",
			expectedQuery:  "hello world",
			expectedSource: SourceYouTube,
		},
		{
			name:           "https URL",
			input:          "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expectedQuery:  "https://youtube.com/watch?v=dQw4w9WgXcQ",
			expectedSource: SourceDirect,
			expectedIsURL:  true,
		},
		{
			name:           "www URL",
			input:          "www.youtube.com/watch?v=abc",
			expectedQuery:  "www.youtube.com/watch?v=abc",
			expectedSource: SourceDirect,
			expectedIsURL:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewSearchQuery(tt.input)

			if q.Query != tt.expectedQuery {
				t.Errorf("Query = %q, expected %q", q.Query, tt.expectedQuery)
			}
			if q.Source != tt.expectedSource {
				t.Errorf("Source = %q, expected %q", q.Source, tt.expectedSource)
			}
			if q.IsURL != tt.expectedIsURL {
				t.Errorf("IsURL = %v, expected %v", q.IsURL, tt.expectedIsURL)
			}
		})
	}
}

func TestSearchQuery_LavalinkQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "test song", expected: "ytsearch:test song"},
		{input: "  padded  ", expected: "ytsearch:padded"},
		{input: "https://youtube.com/watch?v=abc", expected: "https://youtube.com/watch?v=abc"},
		{input: "http://example.com/a.mp3", expected: "http://example.com/a.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := NewSearchQuery(tt.input).LavalinkQuery(); got != tt.expected {
				t.Errorf("LavalinkQuery() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
