package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Optional holds a value together with whether it was provided at all.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Set: true}
}

// UnmarshalJSON marks the value as set unless the JSON literal is null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*o = Some(value)
	return nil
}

const dayLayout = "2006-01-02"

// Timestamp decodes either an RFC 3339 timestamp or a bare YYYY-MM-DD day.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.Parse(dayLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected RFC 3339 or YYYY-MM-DD", raw)
	}
	t.Time = parsed
	return nil
}
