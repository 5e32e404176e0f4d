// Package spool is the HTTP client for the Spool document-indexing API.
// It owns the wire format; callers see typed results and a single error
// type for API-reported failures.
package spool

import "time"

// Collection is a server-side grouping of searchable documents.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// File is one document tracked inside a collection.
type File struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// FileToAdd describes a document to fetch and index.
type FileToAdd struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Match is one semantic-search hit.
type Match struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Error is a failure reported by the Spool API. Error() returns the
// API's message verbatim so callers can surface it unchanged.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}
