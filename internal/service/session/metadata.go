package session

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/datatypes"
)

const (
	MaxUserAgentLength = 512
	MaxIPLength        = 64
	MaxLanguageLength  = 16
)

// Metadata is everything a session stores about the visitor besides the
// creation timestamp, which the service adds itself.
type Metadata struct {
	UserAgent string
	IP        string
	Language  string
}

func (m Metadata) normalize() (Metadata, error) {
	m.UserAgent = strings.TrimSpace(m.UserAgent)
	m.IP = strings.TrimSpace(m.IP)
	m.Language = strings.ToLower(strings.TrimSpace(m.Language))

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"userAgent", m.UserAgent, MaxUserAgentLength},
		{"ip", m.IP, MaxIPLength},
		{"language", m.Language, MaxLanguageLength},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return Metadata{}, fmt.Errorf("metadata.%s must be at most %d characters", f.name, f.max)
		}
	}
	return m, nil
}

func (m Metadata) jsonMap(timestamp string) datatypes.JSONMap {
	out := datatypes.JSONMap{"timestamp": timestamp}
	if m.UserAgent != "" {
		out["userAgent"] = m.UserAgent
	}
	if m.IP != "" {
		out["ip"] = m.IP
	}
	if m.Language != "" {
		out["language"] = m.Language
	}
	return out
}
