package contentful

import (
	"encoding/json"
	"strings"
)

// entryCollection is one page of the entries endpoint
type entryCollection struct {
	Sys   collectionSys `json:"sys"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
	Items []entry       `json:"items"`
}

type collectionSys struct {
	Type string `json:"type"`
}

// entry is a single Contentful entry. Field values keep their raw JSON so
// numbers can be carried as their literal text.
type entry struct {
	Sys    entrySys                   `json:"sys"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type entrySys struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// apiError is the body Contentful returns with non-2xx responses
type apiError struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// field returns the string form of a field value.
// Strings are unquoted, other JSON values keep their literal text, null or missing become "".
func (e *entry) field(name string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return text
}
