package domain

import "errors"

var (
	// ErrPlayerNotFound is returned by operations that require an existing
	// player record (e.g. add-life).
	ErrPlayerNotFound = errors.New("player not found")
	// ErrTopicNotFound indicates the requested question topic has no bank.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrValidation marks client input errors; wrap it with detail.
	ErrValidation = errors.New("invalid request")
	// ErrBadGeneration indicates the question generator returned content
	// that could not be parsed into a valid question.
	ErrBadGeneration = errors.New("question generation failed")
)
