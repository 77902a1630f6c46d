package tui_test

import (
	"strings"
	"testing"

	"github.com/xela07ax/sentinel-console/internal/domain"
	"github.com/xela07ax/sentinel-console/internal/tui"
	"github.com/xela07ax/sentinel-console/internal/view"
)

func TestFeedRows(t *testing.T) {
	rows := tui.FeedRows([]view.FeedItem{
		{EventType: "login", Timestamp: "t1"},
		{EventType: "upload", Timestamp: "t2"},
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if !strings.Contains(rows[0], "login") || !strings.HasSuffix(rows[0], "t1") {
		t.Errorf("row 0 = %q", rows[0])
	}
	if !strings.Contains(rows[1], "upload") {
		t.Errorf("row 1 = %q", rows[1])
	}
	if got := tui.FeedRows(nil); len(got) != 0 {
		t.Errorf("empty feed rows = %v", got)
	}
}

func TestResultText(t *testing.T) {
	if got := tui.ResultText(view.ResultRegion{}); got == "" {
		t.Error("empty region must show a hint")
	}

	r := view.RenderDetection(domain.DetectionResult{RiskLevel: domain.RiskHigh, RiskScore: 0.6, Insight: "odd hours"})
	want := "Risk Level: HIGH\nScore: 60.0%\nInsight: odd hours"
	if got := tui.ResultText(r); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	if got := tui.ResultText(view.RenderPending()); got != view.PendingMessage {
		t.Errorf("pending text = %q", got)
	}
}

func TestButtonText(t *testing.T) {
	if got := tui.ButtonText(view.DefaultTrainButton()); !strings.Contains(got, view.TrainLabelDefault) || strings.Contains(got, "busy") {
		t.Errorf("default = %q", got)
	}
	if got := tui.ButtonText(view.BusyTrainButton()); got != view.TrainLabelBusy+" (busy)" {
		t.Errorf("busy = %q", got)
	}
}
