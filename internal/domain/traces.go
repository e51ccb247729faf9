package domain

import (
	"encoding/json"
	"strings"
)

// ParsedTrace is one client log line uploaded by the mobile app.
type ParsedTrace struct {
	AppVersion string `json:"app_version"`
	Level      string `json:"level"`
	Date       string `json:"date"`
	Message    string `json:"message"`
}

// ParseTraces decodes a JSON array of traces. level, date and message are
// mandatory; app_version is not.
func ParseTraces(blob []byte) ([]ParsedTrace, error) {
	var raw []map[string]any
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, ValidationError{Field: "traces", Msg: "not a JSON array", Err: err}
	}
	out := make([]ParsedTrace, 0, len(raw))
	for _, o := range raw {
		t := ParsedTrace{AppVersion: str(o["app_version"])}
		for field, dst := range map[string]*string{"level": &t.Level, "date": &t.Date, "message": &t.Message} {
			v, ok := o[field]
			if !ok {
				return nil, ValidationError{Field: field, Msg: "missing"}
			}
			*dst = str(v)
		}
		out = append(out, t)
	}
	return out, nil
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
