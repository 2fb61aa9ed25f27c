package domain

import "errors"

var (
	// ErrStorage is returned when local durable storage is unavailable, full, or corrupted.
	ErrStorage = errors.New("local storage error")
	// ErrRemoteUnavailable is returned when a call to the remote store fails.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrNotificationFailed indicates the operator notification could not be dispatched.
	ErrNotificationFailed = errors.New("notification failed")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSubmissionNotFound is returned when a queued submission id is unknown.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrKeyExists is returned by key-value stores on add of an existing key.
	ErrKeyExists = errors.New("key already exists")
	// ErrKeyNotFound is returned by key-value stores on lookup of a missing key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrUnauthorized is returned for bad operator credentials or tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidQuiz rejects quiz definitions the operator cannot save.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidSubmission rejects submissions missing required entry fields.
	ErrInvalidSubmission = errors.New("invalid submission")
)
