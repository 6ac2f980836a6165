package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Document is one production-document link attached to an event.
type Document struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// DocumentList persists as JSONB.
type DocumentList []Document

// Value marshals the list into JSON for Postgres.
func (d DocumentList) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the list.
func (d *DocumentList) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("documents: unsupported scan type %T", value)
	}

	var result DocumentList
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*d = result
	return nil
}

// ParseDocumentLines converts "label|url" lines (url-only lines allowed) into
// a DocumentList, skipping blanks.
func ParseDocumentLines(text string) DocumentList {
	var docs DocumentList
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) == 1 {
			docs = append(docs, Document{Label: "Document", URL: parts[0]})
			continue
		}
		label := strings.TrimSpace(parts[0])
		if label == "" {
			label = "Document"
		}
		url := strings.TrimSpace(parts[1])
		if url == "" {
			continue
		}
		docs = append(docs, Document{Label: label, URL: url})
	}
	return docs
}
