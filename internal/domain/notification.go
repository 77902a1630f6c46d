package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultEventType подставляется, когда бэкенд не прислал ни event_type, ни event.
const DefaultEventType = "event"

// NotificationEvent — элемент ленты уведомлений.
type NotificationEvent struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
}

// UnmarshalJSON разбирает обе формы, которые отдает бэкенд:
// {"event_type": ...} у ленты активности и {"event": ...} у старых эндпоинтов.
// Приоритет: event_type, затем event, затем DefaultEventType.
func (e *NotificationEvent) UnmarshalJSON(data []byte) error {
	var wire struct {
		EventType string          `json:"event_type"`
		Event     string          `json:"event"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch {
	case wire.EventType != "":
		e.EventType = wire.EventType
	case wire.Event != "":
		e.EventType = wire.Event
	default:
		e.EventType = DefaultEventType
	}

	ts, err := decodeTimestamp(wire.Timestamp)
	if err != nil {
		return fmt.Errorf("notification timestamp: %w", err)
	}
	e.Timestamp = ts
	return nil
}

// decodeTimestamp оставляет строку как есть, число печатает без экспоненты.
func decodeTimestamp(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
