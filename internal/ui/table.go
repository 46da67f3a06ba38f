package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const truncMarker = "$"

// fitColumns divides width between columns. Columns that fit in their
// share keep their natural width; the rest split what is left by factor.
func fitColumns(rows [][]string, factors []float64, width int) []int {
	n := len(factors)
	widths := make([]int, n)
	if n == 0 || width <= 0 {
		return widths
	}

	natural := make([]int, n)
	for _, row := range rows {
		for i := 0; i < n && i < len(row); i++ {
			natural[i] = max(natural[i], runewidth.StringWidth(row[i])+1)
		}
	}

	total := 0
	for _, w := range natural {
		total += w
	}

	if total <= width {
		distribute(widths, natural, factors, width-total, nil)
		return widths
	}

	fixed := make([]bool, n)
	remaining := width
	for {
		share := weightOf(factors, fixed)
		if share == 0 {
			break
		}
		changed := false
		for i := range widths {
			if fixed[i] {
				continue
			}
			if float64(natural[i]) <= float64(remaining)*factors[i]/share {
				widths[i] = natural[i]
				fixed[i] = true
				remaining -= natural[i]
				changed = true
			}
		}
		if !changed {
			distribute(widths, make([]int, n), factors, remaining, fixed)
			break
		}
	}
	return widths
}

// distribute sets widths[i] = base[i] plus a factor-weighted part of extra
// for every column not in skip. Rounding leftovers go to the last one.
func distribute(widths, base []int, factors []float64, extra int, skip []bool) {
	share := weightOf(factors, skip)
	if share == 0 {
		return
	}
	used, last := 0, -1
	for i := range widths {
		if skip != nil && skip[i] {
			continue
		}
		add := int(float64(extra) * factors[i] / share)
		widths[i] = base[i] + add
		used += add
		last = i
	}
	widths[last] += extra - used
}

func weightOf(factors []float64, skip []bool) float64 {
	var sum float64
	for i, f := range factors {
		if skip != nil && skip[i] {
			continue
		}
		sum += f
	}
	return sum
}

// fitCell pads or truncates s to exactly w columns.
func fitCell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, truncMarker)
	}
	return runewidth.FillRight(s, w)
}

func renderRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(fitCell(cell, w))
	}
	return b.String()
}
