package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func canvasLines(c *Canvas) []string {
	lines := strings.Split(c.Render(), "\n")
	for i := range lines {
		lines[i] = ansi.Strip(lines[i])
	}
	return lines
}

func TestCanvasDrawStringAtKeepsColumn(t *testing.T) {
	canvas := NewCanvas(10, 4)
	canvas.DrawStringAt(3, 1, "A\nB")

	lines := canvasLines(canvas)
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d", len(lines))
	}
	if idx := strings.Index(lines[1], "A"); idx != 3 {
		t.Fatalf("expected A at column 3, got %d in %q", idx, lines[1])
	}
	if idx := strings.Index(lines[2], "B"); idx != 3 {
		t.Fatalf("expected B at column 3, got %d in %q", idx, lines[2])
	}
}

func TestCanvasDrawCentered(t *testing.T) {
	const width, height = 20, 10
	canvas := NewCanvas(width, height)
	canvas.DrawCentered("AA\nBB", 1, 1)
	lines := canvasLines(canvas)

	row := 4 // top margin 1, usable 8, block 2
	if idx := strings.Index(lines[row], "AA"); idx != 9 {
		t.Fatalf("expected AA at column 9, got %d", idx)
	}
	if idx := strings.Index(lines[row+1], "BB"); idx != 9 {
		t.Fatalf("expected BB at column 9, got %d", idx)
	}
}

func TestCanvasDrawBottomRight(t *testing.T) {
	const width, height = 30, 6
	canvas := NewCanvas(width, height)
	canvas.DrawStringAt(0, 0, "base")
	canvas.DrawBottomRight("ERR", 1, 2)
	lines := canvasLines(canvas)

	row := height - 1 - 2
	if idx := strings.Index(lines[row], "ERR"); idx != width-len("ERR")-1 {
		t.Fatalf("expected ERR at column %d, got %d in %q", width-len("ERR")-1, idx, lines[row])
	}
	if !strings.HasPrefix(lines[0], "base") {
		t.Fatalf("base content should survive overlay, got %q", lines[0])
	}
}

func TestCanvasClampsOversizedBlocks(t *testing.T) {
	canvas := NewCanvas(4, 2)
	canvas.DrawBottomRight("123456\n2\n3", 0, 0)
	lines := canvasLines(canvas)
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1234") {
		t.Fatalf("expected cropped first row, got %q", lines[0])
	}
}
