package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// ClampPercent bounds a progress value to 0..100. The roll-up passes stored
// values through untouched, so bars clamp here.
func ClampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// RenderProgress renders a progress bar like [████░░░░]  45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct int, width int) string {
	pct = ClampPercent(pct)
	return fmt.Sprintf("[%s] %3d%%", RenderCompactBar(pct, width, false), pct)
}

// RenderCompactBar renders only the blocks, without brackets or label.
func RenderCompactBar(pct int, width int, dim bool) string {
	pct = ClampPercent(pct)
	if width < 2 {
		width = 2
	}

	filled := pct * width / 100
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	if dim {
		return bar
	}

	style := StyleGreen
	switch {
	case pct < 33:
		style = StyleRed
	case pct < 66:
		style = StyleYellow
	}
	return style.Render(bar)
}
