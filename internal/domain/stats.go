package domain

import (
	"encoding/json"
	"math"
)

// ActivityStatRow — агрегат "тип события -> количество", считается на бэкенде.
type ActivityStatRow struct {
	EventType string `json:"event_type" mapstructure:"event_type"`
	Count     int64  `json:"count" mapstructure:"count"`
}

// NewActivityStatRow применяет fallback-цепочку дашборда:
// метка event_type|activity_type, значение total|count|0 (первое ненулевое).
func NewActivityStatRow(eventType, activityType string, total, count float64) ActivityStatRow {
	row := ActivityStatRow{EventType: eventType}
	if row.EventType == "" {
		row.EventType = activityType
	}
	for _, v := range []float64{total, count} {
		if v != 0 {
			row.Count = int64(math.Trunc(v))
			break
		}
	}
	return row
}

func (r *ActivityStatRow) UnmarshalJSON(data []byte) error {
	var wire struct {
		EventType    string  `json:"event_type"`
		ActivityType string  `json:"activity_type"`
		Total        float64 `json:"total"`
		Count        float64 `json:"count"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*r = NewActivityStatRow(wire.EventType, wire.ActivityType, wire.Total, wire.Count)
	return nil
}
