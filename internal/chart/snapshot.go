package chart

import (
	"image"
	"strings"

	ui "github.com/gizak/termui/v3"
)

// Snapshot рисует виджет во внеэкранный буфер termui и возвращает текст.
// Терминал для этого не нужен.
func Snapshot(d ui.Drawable, width, height int) string {
	d.SetRect(0, 0, width, height)
	buf := ui.NewBuffer(d.GetRect())

	d.Lock()
	d.Draw(buf)
	d.Unlock()

	lines := make([]string, 0, height)
	row := make([]rune, 0, width)
	for y := 0; y < height; y++ {
		row = row[:0]
		for x := 0; x < width; x++ {
			r := buf.GetCell(image.Pt(x, y)).Rune
			if r == 0 {
				r = ' '
			}
			row = append(row, r)
		}
		lines = append(lines, strings.TrimRight(string(row), " "))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
