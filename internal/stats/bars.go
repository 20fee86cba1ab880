package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/cvsheet/internal/model"
)

const (
	barRune             = '█'
	minBarWidth         = 10
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// RenderBars prints a horizontal bar chart of histogram entries. A width of
// zero sizes the chart to the terminal.
func RenderBars(w io.Writer, title string, entries []model.HistogramEntry, width int, forceColor bool) error {
	if len(entries) == 0 {
		return nil
	}
	labelWidth, countWidth, maxCount := 0, 0, 0
	for _, e := range entries {
		if lw := displayWidth(e.Label); lw > labelWidth {
			labelWidth = lw
		}
		if cw := len(strconv.Itoa(e.Count)); cw > countWidth {
			countWidth = cw
		}
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := BarWidthFor(width, labelWidth, countWidth)
	useColor := shouldUseColor(w, forceColor)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for i, e := range entries {
		n := 0
		if maxCount > 0 {
			n = e.Count * barWidth / maxCount
		}
		if n == 0 && e.Count > 0 {
			n = 1
		}
		bar := strings.Repeat(string(barRune), n)
		if useColor && bar != "" {
			bar = colorPalette[i%len(colorPalette)] + bar + colorReset
		}
		pad := strings.Repeat(" ", barWidth-n)
		line := fmt.Sprintf("%s %s%s %*d", padCell(e.Label, labelWidth, false), bar, pad, countWidth, e.Count)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BarWidthFor computes the bar area that fits next to labels and counts.
func BarWidthFor(totalWidth, labelWidth, countWidth int) int {
	if totalWidth <= 0 {
		return minBarWidth
	}
	barWidth := totalWidth - labelWidth - countWidth - 2
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	return barWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
