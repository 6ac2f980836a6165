package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray stores a set of ids as a Postgres uuid[] column. Scan also accepts
// a JSON array because pre-migration checkout rows persisted their item lists
// as JSON text.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	if src == nil {
		*a = UUIDArray{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return a.parseFromString(v)
	case []byte:
		return a.parseFromString(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

func (a UUIDArray) Value() (driver.Value, error) {
	// Postgres array literal: {uuid,uuid}
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(a))
	for _, id := range a {
		parts = append(parts, id.String())
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains reports whether id is present.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}

// Without returns a copy with id removed.
func (a UUIDArray) Without(ids ...uuid.UUID) UUIDArray {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(UUIDArray, 0, len(a))
	for _, candidate := range a {
		if _, gone := drop[candidate]; !gone {
			out = append(out, candidate)
		}
	}
	return out
}

func (a *UUIDArray) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "{}" || s == "[]" {
		*a = UUIDArray{}
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var raw []string
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return fmt.Errorf("UUIDArray: decode json: %w", err)
		}
		return a.fromStrings(raw)
	}

	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*a = UUIDArray{}
		return nil
	}
	return a.fromStrings(strings.Split(s, ","))
}

func (a *UUIDArray) fromStrings(raw []string) error {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(strings.Trim(r, `"`))
		id, err := uuid.Parse(r)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", r, err)
		}
		out = append(out, id)
	}
	*a = UUIDArray(out)
	return nil
}
