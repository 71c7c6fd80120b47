// Package server provides the HTTP REST API for prospect research.
package server

import (
	"errors"
	"net/http"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/llm"
	"github.com/micahbrochin-debug/sales-ai-tool/internal/pipeline"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrRunInFlight):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrNoStagesEnabled), errors.Is(err, pipeline.ErrMissingAPIKey):
		return http.StatusBadRequest
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case llm.FailureAuth:
			return http.StatusUnauthorized
		case llm.FailureRateLimit:
			return http.StatusTooManyRequests
		default:
			return http.StatusBadGateway
		}
	}

	var stageErr *pipeline.StageError
	var synthErr *pipeline.SynthesisError
	if errors.As(err, &stageErr) || errors.As(err, &synthErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
