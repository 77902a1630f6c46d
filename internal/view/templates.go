package view

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"github.com/xela07ax/sentinel-console/internal/domain"
)

const layout = `
{{define "result"}}<div id="manual-detect-result">{{if .Severity}}<div class="alert alert-{{.Severity}}">{{if .Message}}{{.Message}}{{else}}<strong>Risk Level:</strong> {{.RiskLevel}}<br><strong>Score:</strong> {{.Score}}{{if .Insight}}<hr><strong>Insight:</strong> {{.Insight}}{{end}}{{end}}</div>{{end}}</div>{{end}}

{{define "feed"}}<ul id="notification-feed">{{range .}}<li><strong>{{.EventType}}</strong><br><small class="text-muted">{{.Timestamp}}</small></li>{{end}}</ul>{{end}}

{{define "train"}}<button id="manual-train-btn" type="button"{{if .Disabled}} disabled{{end}}>{{if .Spinner}}<span class="spinner"></span> {{end}}{{.Label}}</button>{{end}}

{{define "table"}}<table id="report-table"><thead><tr><th>ID</th><th>User</th><th>Type</th><th>Description</th><th>Risk</th><th>Score</th><th>Status</th><th>Created</th></tr></thead><tbody>{{range .}}<tr><td>{{.ID}}</td><td>{{.Username}}</td><td>{{.AlertType}}</td><td>{{.Description}}</td><td>{{.RiskLevel}}</td><td>{{score .RiskScore}}</td><td>{{.Status}}</td><td>{{.CreatedAt}}</td></tr>{{end}}</tbody></table>{{end}}

{{define "page"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>CyberSentinel Console</title>
<style>
  body { font-family: Arial, sans-serif; background: #0b1118; color: #e5fef7; padding: 2rem; }
  .alert { padding: 0.75rem; border-radius: 4px; margin-top: 1rem; }
  .alert-info { background: #0c3b52; } .alert-success { background: #10442f; }
  .alert-warning { background: #5a4410; } .alert-danger { background: #5a1420; }
  pre.chart { color: #9dffe4; }
  table { width: 100%; border-collapse: collapse; margin-top: 1.5rem; }
  th, td { border: 1px solid rgba(61,245,198,0.25); padding: 0.75rem; }
</style></head><body>
<h1>CyberSentinel Console</h1>
<section><h2>Manual Detection</h2>
<form id="manual-detect-form" method="post" action="/detect">
  <input name="event_type" placeholder="event type">
  <input name="source_ip" placeholder="source ip">
  <input name="device" placeholder="device">
  <input name="location" placeholder="location">
  <input name="description" placeholder="description">
  <button type="submit">Analyse</button>
</form>
{{template "result" .Snapshot.Result}}
</section>
<section><h2>Activity</h2>{{range .Charts}}<pre class="chart">{{.}}</pre>{{end}}</section>
<section><h2>Notifications</h2>{{template "feed" .Snapshot.Feed}}</section>
<section><h2>Models</h2>{{template "train" .Snapshot.TrainButton}}</section>
<section><h2>Alerts</h2><a id="generate-report-btn" href="/report">Generate Report</a>{{.Table}}</section>
<script>
(function () {
  const pendingResult = {{.PendingResult}};
  const busyButton = {{.BusyButton}};
  const trainResetMs = {{.TrainResetMs}};

  const form = document.getElementById('manual-detect-form');
  form.addEventListener('submit', async (event) => {
    event.preventDefault();
    const body = new URLSearchParams(new FormData(form));
    document.getElementById('manual-detect-result').outerHTML = pendingResult;
    try {
      const resp = await fetch('/detect', { method: 'POST', body: body });
      document.getElementById('manual-detect-result').outerHTML = await resp.text();
    } catch (err) {
      const region = document.getElementById('manual-detect-result');
      region.innerHTML = '<div class="alert alert-danger"></div>';
      region.firstChild.textContent = err.message;
    }
  });

  // сервер сам возвращает кнопку в исходное состояние через trainResetMs
  async function reloadTrainButton() {
    try {
      const resp = await fetch('/train');
      if (resp.ok) document.getElementById('manual-train-btn').outerHTML = await resp.text();
    } catch (err) {}
    if (document.getElementById('manual-train-btn').disabled) setTimeout(reloadTrainButton, 1000);
  }

  document.addEventListener('click', async (event) => {
    const btn = event.target.closest('#manual-train-btn');
    if (!btn || btn.disabled) return;
    btn.outerHTML = busyButton;
    try {
      const resp = await fetch('/train', { method: 'POST' });
      document.getElementById('manual-train-btn').outerHTML = await resp.text();
    } finally {
      setTimeout(reloadTrainButton, trainResetMs);
    }
  });

  setInterval(async () => {
    const resp = await fetch('/feed');
    if (resp.ok) document.getElementById('notification-feed').outerHTML = await resp.text();
  }, {{.FeedReloadMs}});
})();
</script>
</body></html>{{end}}
`

var templates = template.Must(template.New("view").Funcs(template.FuncMap{
	"score": func(s domain.Score) string { return FormatScore(float64(s)) },
}).Parse(layout))

// PageData содержит все для полной страницы.
type PageData struct {
	Snapshot     Snapshot
	Table        template.HTML
	Charts       []string // текстовые снимки графиков
	FeedReloadMs int64

	// состояния, которые браузер рисует сам до ответа сервера
	PendingResult template.HTML
	BusyButton    template.HTML
	TrainResetMs  int64
}

// NewPageData собирает данные страницы из снимка и задержек консоли.
func NewPageData(snap Snapshot, table template.HTML, charts []string, feedReload, trainReset time.Duration) PageData {
	return PageData{
		Snapshot:      snap,
		Table:         table,
		Charts:        charts,
		FeedReloadMs:  feedReload.Milliseconds(),
		PendingResult: fragment("result", RenderPending()),
		BusyButton:    fragment("train", BusyTrainButton()),
		TrainResetMs:  trainReset.Milliseconds(),
	}
}

func WritePage(w io.Writer, data PageData) error {
	return templates.ExecuteTemplate(w, "page", data)
}

func WriteResult(w io.Writer, r ResultRegion) error {
	return templates.ExecuteTemplate(w, "result", r)
}

func WriteFeed(w io.Writer, items []FeedItem) error {
	return templates.ExecuteTemplate(w, "feed", items)
}

func WriteTrainButton(w io.Writer, b Button) error {
	return templates.ExecuteTemplate(w, "train", b)
}

// RenderAlertTable рисует таблицу отчета, ее потом забирает экспортер.
func RenderAlertTable(alerts []domain.Alert) template.HTML {
	if table := fragment("table", alerts); table != "" {
		return table
	}
	return template.HTML(`<table id="report-table"></table>`)
}

// fragment рендерит именованный шаблон в строку. Шаблоны статические,
// ошибка возможна только при поломке writer'а.
func fragment(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
