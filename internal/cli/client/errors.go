package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// duplicateHandleDetail is the fragment the server puts in a 400 detail
// when a registration reuses an existing handle.
const duplicateHandleDetail = "User handle already exists"

// APIError is a non-2xx response from the server. Detail carries the
// response body's "detail" field when present, otherwise the raw body.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed with HTTP status %d", e.Status)
	}
	return fmt.Sprintf("request failed with HTTP status %d: %s", e.Status, e.Detail)
}

// newAPIError extracts the detail field from an error response body.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
	}
	detail := strings.TrimSpace(string(body))
	if err := sonic.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}
	return &APIError{Status: status, Detail: detail}
}

// IsDuplicateHandle reports whether the error is the server rejecting a
// registration because the handle is taken.
func IsDuplicateHandle(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 400 && strings.Contains(apiErr.Detail, duplicateHandleDetail)
}
