// Package report собирает автономный HTML-отчет из таблицы алертов.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"
)

// Имя скачиваемого файла
const FileName = "cybersentinel-report.html"

// ContentType отчета: UTF-8, без внешних ресурсов.
const ContentType = "text/html; charset=utf-8"

// isoMillis повторяет Date.toISOString(): UTC, миллисекунды, суффикс Z.
const isoMillis = "2006-01-02T15:04:05.000Z"

var shell = template.Must(template.New("report").Parse(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>CyberSentinel Report</title>
<style>
  body { font-family: Arial, sans-serif; background: #0b1118; color: #e5fef7; padding: 2rem; }
  table { width: 100%; border-collapse: collapse; margin-top: 1.5rem; }
  th, td { border: 1px solid rgba(61,245,198,0.25); padding: 0.75rem; }
  th { background: rgba(0,245,160,0.1); }
</style></head><body>
<h1>CyberSentinel Alert Report</h1>
<p>Generated: {{.Generated}}</p>
{{.Table}}
</body></html>`))

// Export встраивает внешнюю разметку таблицы в минимальную оболочку.
// Чистая функция: ни сети, ни состояния.
func Export(table template.HTML, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := shell.Execute(&buf, struct {
		Generated string
		Table     template.HTML
	}{
		Generated: now.UTC().Format(isoMillis),
		Table:     table,
	})
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile кладет отчет в dir под стандартным именем и возвращает путь.
func WriteFile(dir string, table template.HTML, now time.Time) (string, error) {
	body, err := Export(table, now)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}
