package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

// Canvas composes lipgloss-rendered blocks into a cellbuf screen so overlays
// such as toasts and the help modal can be drawn over the base frame.
type Canvas struct {
	screen *cellbuf.Screen
	writer *cellbuf.ScreenWriter
	width  int
	height int
}

// NewCanvas allocates a width x height canvas. Non-positive sizes become 1.
func NewCanvas(width, height int) *Canvas {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	screen := cellbuf.NewScreen(io.Discard, width, height, &cellbuf.ScreenOptions{
		ShowCursor: false,
		AltScreen:  false,
	})
	return &Canvas{
		screen: screen,
		writer: cellbuf.NewScreenWriter(screen),
		width:  width,
		height: height,
	}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// DrawStringAt writes content starting at x,y. Each line of a multi-line
// block starts at column x.
func (c *Canvas) DrawStringAt(x, y int, content string) {
	if content == "" || c == nil || c.writer == nil {
		return
	}
	c.drawBlockAt(x, y, splitBlockLines(content))
}

// DrawCentered places a block in the middle of the rows between topMargin and
// the bottom margin, so header and footer stay visible.
func (c *Canvas) DrawCentered(block string, topMargin, bottomMargin int) {
	lines := splitBlockLines(block)
	if len(lines) == 0 || c == nil {
		return
	}
	topMargin = max(topMargin, 0)
	bottomMargin = max(bottomMargin, 0)

	blockHeight := len(lines)
	blockWidth := min(maxLineWidth(lines), c.width)

	usable := max(c.height-topMargin-bottomMargin, blockHeight)
	y := topMargin + (usable-blockHeight)/2
	y = min(y, c.height-bottomMargin-blockHeight)
	y = max(y, topMargin, 0)

	x := max((c.width-blockWidth)/2, 0)
	c.drawBlockAt(x, y, lines)
}

// DrawBottomRight anchors a block to the bottom-right corner, keeping
// rightPad columns and bottomPad rows free.
func (c *Canvas) DrawBottomRight(block string, rightPad, bottomPad int) {
	lines := splitBlockLines(block)
	if len(lines) == 0 || c == nil {
		return
	}
	y := max(c.height-len(lines)-max(bottomPad, 0), 0)
	x := max(c.width-maxLineWidth(lines)-max(rightPad, 0), 0)
	c.drawBlockAt(x, y, lines)
}

func (c *Canvas) drawBlockAt(x, y int, lines []string) {
	x = max(x, 0)
	y = max(y, 0)
	for i, line := range lines {
		row := y + i
		if row >= c.height {
			break
		}
		if line == "" {
			continue
		}
		c.writer.PrintCropAt(x, row, line, "")
	}
}

// Render returns the composed frame as newline-separated rows and releases
// the screen.
func (c *Canvas) Render() string {
	if c == nil || c.screen == nil {
		return ""
	}
	raw := cellbuf.Render(c.screen)
	_ = c.screen.Close()
	return strings.ReplaceAll(raw, "\r\n", "\n")
}

func splitBlockLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, lipgloss.Width(line))
	}
	return w
}
