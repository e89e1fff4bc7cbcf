package current

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harun/sesh/pkg/sesherr"
	"github.com/harun/sesh/pkg/tag"
	"github.com/xeipuuv/gojsonschema"
)

// Session is the single in-flight work session.
type Session struct {
	Title     string
	Tags      tag.Set
	StartTime time.Time
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if now.Before(s.StartTime) {
		return 0
	}
	return now.Sub(s.StartTime)
}

// recordSchema describes the on-disk shape of an active session.
const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "tags", "start_time"],
  "properties": {
    "title": { "type": "string" },
    "tags": {
      "type": "array",
      "items": { "type": "string" }
    },
    "start_time": { "type": "string", "minLength": 1 }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(recordSchema)

// wireSession is the JSON form of Session.
type wireSession struct {
	Title     string   `json:"title"`
	Tags      []string `json:"tags"`
	StartTime string   `json:"start_time"`
}

// FormatTime renders t as a UTC RFC 3339 instant rounded to the second.
func FormatTime(t time.Time) string {
	return t.Round(time.Second).UTC().Format(time.RFC3339)
}

// ParseTime parses an RFC 3339 instant.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Encode serializes s. A nil session encodes as a JSON null.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return []byte("null\n"), nil
	}
	w := wireSession{
		Title:     s.Title,
		Tags:      s.Tags.Names(),
		StartTime: FormatTime(s.StartTime),
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a record payload. Empty, null and {} payloads decode to
// a nil session.
func Decode(data []byte) (*Session, error) {
	const op = "current.decode"

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, sesherr.New(sesherr.ErrCorruptData, op, err)
	}
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(v) == 0 {
			return nil, nil
		}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(trimmed))
	if err != nil {
		return nil, sesherr.New(sesherr.ErrCorruptData, op, err)
	}
	if !result.Valid() {
		var errMsg string
		for i, e := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += e.String()
		}
		return nil, sesherr.Detailed(sesherr.ErrCorruptData, op, errMsg)
	}

	var w wireSession
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, sesherr.New(sesherr.ErrCorruptData, op, err)
	}

	start, err := ParseTime(w.StartTime)
	if err != nil {
		return nil, sesherr.New(sesherr.ErrCorruptData, op, fmt.Errorf("start_time: %w", err))
	}

	var tags tag.Set
	for _, name := range w.Tags {
		t, err := tag.New(name)
		if err != nil {
			return nil, sesherr.Detailed(sesherr.ErrCorruptData, op, fmt.Sprintf("invalid tag %q", name))
		}
		tags.Add(t)
	}

	return &Session{
		Title:     w.Title,
		Tags:      tags,
		StartTime: start,
	}, nil
}
