package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"shareit/internal/models"
)

// TimestampLayout is the wire format for every timestamp the API emits.
const TimestampLayout = "2006-01-02T15:04:05"

var inputLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// Timestamp is a time.Time exchanged as a zone-less UTC string.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: models.Normalize(t)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range inputLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = models.Normalize(parsed)
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q, expected %s", raw, TimestampLayout)
}
