package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/javi-app/javi-backend/pkg/errors"
)

// ParseUUID parses a uuid out of a path or query value.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier must be a uuid").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// ParseQueryTime reads an RFC3339 timestamp from the query string.
func ParseQueryTime(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").
			WithDetails(map[string]any{"field": key})
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be an RFC3339 timestamp").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryUUID reads an optional uuid from the query string. Empty is nil.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := ParseUUID(raw, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
