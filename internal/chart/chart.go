// Package chart строит виджеты termui из рядов {label, value}.
// Каждый вызов создает новый виджет: графики не обновляются, а заменяются.
package chart

import (
	"fmt"
	"sync"
	"unicode/utf8"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

type Kind string

const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
)

// Point задает одну точку ряда.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Spec достаточно, чтобы перерисовать график с нуля.
type Spec struct {
	Kind   Kind    `json:"kind"`
	Title  string  `json:"title"`
	Series []Point `json:"series"`
}

const (
	minBarWidth = 3
	maxBarWidth = 14
)

// Line рисует одну линию временного ряда.
func Line(title string, series []Point) *widgets.Plot {
	values := make([]float64, 0, len(series))
	labels := make([]string, 0, len(series))
	for _, p := range series {
		values = append(values, p.Value)
		labels = append(labels, p.Label)
	}

	// termui рисует линию отрезками и падает на рядах короче двух точек
	switch len(values) {
	case 0:
		values = []float64{0, 0}
		labels = []string{"", ""}
	case 1:
		values = append(values, values[0])
		labels = append(labels, labels[0])
	}

	p := widgets.NewPlot()
	p.Title = title
	p.Data = [][]float64{values}
	p.DataLabels = labels
	p.PlotType = widgets.LineChart
	p.Marker = widgets.MarkerBraille
	p.LineColors = []ui.Color{ui.ColorCyan}
	p.AxesColor = ui.ColorWhite
	p.MaxVal = axisMax(values)
	return p
}

// Bar рисует столбцы, по одному на точку.
func Bar(title string, series []Point) *widgets.BarChart {
	bc := widgets.NewBarChart()
	bc.Title = title

	width := minBarWidth
	values := make([]float64, 0, len(series))
	labels := make([]string, 0, len(series))
	for _, p := range series {
		values = append(values, p.Value)
		labels = append(labels, p.Label)
		if n := utf8.RuneCountInString(p.Label); n > width {
			width = n
		}
	}
	if width > maxBarWidth {
		width = maxBarWidth
	}

	bc.Data = values
	bc.Labels = labels
	bc.BarWidth = width
	bc.BarGap = 2
	bc.BarColors = []ui.Color{ui.ColorGreen}
	bc.LabelStyles = []ui.Style{ui.NewStyle(ui.ColorCyan)}
	bc.NumStyles = []ui.Style{ui.NewStyle(ui.ColorBlack)}
	bc.NumFormatter = func(v float64) string { return fmt.Sprintf("%.0f", v) }
	bc.MaxVal = axisMax(values)
	return bc
}

// axisMax не дает оси схлопнуться в ноль: termui делит на максимум.
func axisMax(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return 1
	}
	return max
}

// Build создает виджет нужного типа по спецификации.
func Build(spec Spec) ui.Drawable {
	if spec.Kind == KindBar {
		return Bar(spec.Title, spec.Series)
	}
	return Line(spec.Title, spec.Series)
}

// Board держит последний виджет для каждого id.
// Повторный Render выбрасывает старый экземпляр и создает новый.
type Board struct {
	mu      sync.Mutex
	widgets map[string]ui.Drawable
}

func NewBoard() *Board {
	return &Board{widgets: make(map[string]ui.Drawable)}
}

func (b *Board) Render(id string, spec Spec) ui.Drawable {
	d := Build(spec)
	b.mu.Lock()
	b.widgets[id] = d
	b.mu.Unlock()
	return d
}

func (b *Board) Get(id string) (ui.Drawable, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.widgets[id]
	return d, ok
}
