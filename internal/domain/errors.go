package domain

import "errors"

var (
	// ErrMissingDuration is returned when no duration can be extracted
	// from a prompt. Duration is mandatory for every activity.
	ErrMissingDuration = errors.New("could not find duration in your description, include how long you exercised (e.g. '30 minutes')")

	// ErrUnparseablePrompt is returned when neither the model nor the
	// deterministic fallback can make sense of the prompt.
	ErrUnparseablePrompt = errors.New("could not understand your workout description, include the activity type and duration (e.g. 'I went for a 30 minute run')")

	// ErrLowConfidence rejects parses below the acceptance threshold.
	ErrLowConfidence = errors.New("unable to understand the activity details from your prompt, please be more specific about the activity type and duration")

	// ErrNotAuthenticated indicates no usable token is available for the user.
	ErrNotAuthenticated = errors.New("no access token available, authenticate first")
)
