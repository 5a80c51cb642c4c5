package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderScoreBar renders value against max as a bar like ████░░░░  34,
// drawn in the category color.
func RenderScoreBar(value, max, width int, hex string) string {
	if width < 2 {
		width = 2
	}
	if max <= 0 {
		max = 1
	}
	if value < 0 {
		value = 0
	}

	filled := value * width / max
	if filled > width {
		filled = width
	}
	bar := CategoryStyle(hex).Render(strings.Repeat(filledBlock, filled)) +
		StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
	return fmt.Sprintf("%s %3d", bar, value)
}

// RenderProgress renders answered/total like [████░░░░] 12/40.
func RenderProgress(done, total, width int) string {
	if width < 2 {
		width = 2
	}
	if total <= 0 {
		total = 1
	}
	if done > total {
		done = total
	}

	filled := done * width / total
	style := StyleYellow
	if done == total {
		style = StyleGreen
	}
	bar := style.Render(strings.Repeat(filledBlock, filled)) + StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
	return fmt.Sprintf("[%s] %d/%d", bar, done, total)
}
