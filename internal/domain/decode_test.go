package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/xela07ax/sentinel-console/internal/domain"
)

func TestNotificationEventVariants(t *testing.T) {
	raw := `[
		{"event_type": "login", "event": "ignored", "timestamp": "Mon, 13 Oct 2026 10:00:00 GMT"},
		{"event": "file_upload", "timestamp": 1760349600},
		{"timestamp": null},
		{"event_type": "", "event": "", "timestamp": "2026-10-13"}
	]`

	var events []domain.NotificationEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []domain.NotificationEvent{
		{EventType: "login", Timestamp: "Mon, 13 Oct 2026 10:00:00 GMT"},
		{EventType: "file_upload", Timestamp: "1760349600"},
		{EventType: domain.DefaultEventType, Timestamp: ""},
		{EventType: domain.DefaultEventType, Timestamp: "2026-10-13"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestNotificationEventRejectsBadTimestamp(t *testing.T) {
	var e domain.NotificationEvent
	if err := json.Unmarshal([]byte(`{"event_type":"x","timestamp":{"a":1}}`), &e); err == nil {
		t.Fatal("expected error for object timestamp")
	}
}

func TestActivityStatRowFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		label string
		count int64
	}{
		{"canonical", `{"event_type":"login","count":4}`, "login", 4},
		{"total wins", `{"event_type":"login","total":12,"count":4}`, "login", 12},
		{"zero total falls to count", `{"activity_type":"upload","total":0,"count":7}`, "upload", 7},
		{"nothing", `{"event_type":"scan"}`, "scan", 0},
		{"event_type over activity_type", `{"event_type":"a","activity_type":"b","total":1}`, "a", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row domain.ActivityStatRow
			if err := json.Unmarshal([]byte(tt.raw), &row); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if row.EventType != tt.label || row.Count != tt.count {
				t.Errorf("got %+v, want label=%q count=%d", row, tt.label, tt.count)
			}
		})
	}
}

func TestAlertScoreAcceptsDecimalStrings(t *testing.T) {
	raw := `[{"id":1,"risk_score":"0.82","risk_level":"critical"},{"id":2,"risk_score":0.5},{"id":3,"risk_score":null}]`

	var alerts []domain.Alert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []domain.Score{0.82, 0.5, 0}
	for i, w := range want {
		if alerts[i].RiskScore != w {
			t.Errorf("alert %d score = %v, want %v", i, alerts[i].RiskScore, w)
		}
	}
	if alerts[0].RiskLevel != domain.RiskCritical {
		t.Errorf("risk level = %q", alerts[0].RiskLevel)
	}
}

func TestDetectionResultValidate(t *testing.T) {
	if err := (&domain.DetectionResult{RiskLevel: domain.RiskLow}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&domain.DetectionResult{}).Validate(); err != domain.ErrMissingRiskLevel {
		t.Fatalf("got %v, want ErrMissingRiskLevel", err)
	}
}
