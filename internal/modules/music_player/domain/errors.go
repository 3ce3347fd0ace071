package domain

import "errors"

var (
	// ErrInvalidQuery is returned when a search query is empty or too long.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrQueueFull is returned when the pending queue is at capacity.
	ErrQueueFull = errors.New("the queue is full")

	// ErrEmptyPlaylist is returned when a playlist without tracks is enqueued.
	ErrEmptyPlaylist = errors.New("the playlist is empty")
)
