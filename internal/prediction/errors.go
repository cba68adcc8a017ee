// Package prediction picks the day's selection through a chat completion service.
package prediction

import "errors"

var (
	// ErrMissingAPIKey indicates no API key was configured
	ErrMissingAPIKey = errors.New("model api key is not set, configure model.api_key or OPENAI_API_KEY")

	// ErrServiceUnavailable indicates the completion service is unreachable
	ErrServiceUnavailable = errors.New("completion service unavailable")

	// ErrCompletionFailed indicates the service answered with a non-success status
	ErrCompletionFailed = errors.New("completion request failed")

	// ErrInvalidResponse indicates the service response could not be decoded
	ErrInvalidResponse = errors.New("invalid response from completion service")

	// ErrInvalidModelResponse indicates the model content was not the expected JSON
	ErrInvalidModelResponse = errors.New("model did not return valid JSON")

	// ErrMissingSelection indicates the model response had no selection
	ErrMissingSelection = errors.New("model response has no selection")

	// ErrMissingSelectionFields indicates the selection lacks required keys
	ErrMissingSelectionFields = errors.New("model selection is missing keys")

	// ErrSelectionNotInCandidates indicates the model picked a runner that was not offered
	ErrSelectionNotInCandidates = errors.New("model selected a horse that is not in the candidates list")

	// ErrPredictionNotFound indicates no saved prediction exists for a date
	ErrPredictionNotFound = errors.New("no prediction file for date")
)
