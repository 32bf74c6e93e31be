package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized indicates invalid credentials or an expired session.
	ErrUnauthorized = errors.New("clients: unauthorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("clients: not found")
)

// errorFromStatus maps a non-success backend response to the error taxonomy.
func errorFromStatus(status int, body []byte) error {
	msg := errorMessage(status, body)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return fmt.Errorf("clients: backend status %d: %s", status, msg)
	}
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(status)
}
