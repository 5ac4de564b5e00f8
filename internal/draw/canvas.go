// Package draw renders arena coordinates to a colored half-block terminal canvas.
package draw

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Background is the sky color that faded objects blend toward.
var Background = colorful.Color{R: 0x0a / 255.0, G: 0x0e / 255.0, B: 0x27 / 255.0}

// Fade blends c toward the background. alpha 1 keeps c, alpha 0 is invisible.
func Fade(c colorful.Color, alpha float64) colorful.Color {
	if alpha <= 0 {
		return Background
	}
	if alpha >= 1 {
		return c
	}
	return Background.BlendRgb(c, alpha).Clamped()
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Objects draw in logical (arena) coordinates which are scaled to terminal pixels.
type Canvas struct {
	termWidth      int // Actual terminal columns
	termHeight     int // Actual terminal rows
	subPixelHeight int // termHeight * 2

	pixels []colorful.Color // Flat slice: [y * termWidth + x]
	set    []bool           // true where a pixel was drawn this frame

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Reusable buffers to reduce allocations
	renderBuf       strings.Builder
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 1 {
		termWidth = 1
	}
	if termHeight < 1 {
		termHeight = 1
	}
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]colorful.Color, subPixelHeight*termWidth)
		c.set = make([]bool, subPixelHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}
	c.rescale()
}

// SetLogicalSize changes the coordinate space objects draw in.
func (c *Canvas) SetLogicalSize(width, height float64) {
	c.logicalWidth = width
	c.logicalHeight = height
	c.rescale()
}

func (c *Canvas) rescale() {
	c.scaleX = float64(c.termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.set)
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col colorful.Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		idx := y*c.termWidth + x
		c.pixels[idx] = col
		c.set[idx] = true
	}
}

// Pixel returns the color at terminal pixel (x, y) and whether it was drawn.
func (c *Canvas) Pixel(x, y int) (colorful.Color, bool) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return colorful.Color{}, false
	}
	idx := y*c.termWidth + x
	return c.pixels[idx], c.set[idx]
}

// SetFloat sets a pixel using logical coordinates.
func (c *Canvas) SetFloat(x, y float64, col colorful.Color) {
	c.setPixel(int(math.Round(x*c.scaleX)), int(math.Round(y*c.scaleY)), col)
}

// DrawLine draws a line using Bresenham's algorithm. Coordinates are logical.
func (c *Canvas) DrawLine(p1, p2 Point, col colorful.Color) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a polygon outline, filling the interior when filled is true.
func (c *Canvas) DrawPolygon(points []Point, filled bool, col colorful.Color) {
	if len(points) < 3 {
		return
	}

	if filled {
		c.fillPolygon(points, col)
	}

	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], col)
	}
}

// fillPolygon fills a polygon using a scanline pass in pixel space.
func (c *Canvas) fillPolygon(points []Point, col colorful.Color) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	for i, p := range points {
		scaled[i] = Point{X: p.X * c.scaleX, Y: p.Y * c.scaleY}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	yStart := int(math.Floor(minY))
	yEnd := int(math.Ceil(maxY))

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5
		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]

			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				intersections = append(intersections, p1.X+t*(p2.X-p1.X))
			}
		}
		c.intersectionBuf = intersections

		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i]))
			xEnd := int(math.Floor(intersections[i+1]))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y, col)
			}
		}
	}
}

// Render outputs the canvas using half-block characters with 24-bit colors.
// The top sub-pixel is the foreground of '▀', the bottom one its background.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 24)

	var lastFg, lastBg string
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := (row*2 + 1) * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.set[topOffset+col]
			bottom := c.set[bottomOffset+col]
			if !top && !bottom {
				continue
			}

			var ch rune
			var fg, bg string
			switch {
			case top && bottom:
				tc, bc := c.pixels[topOffset+col], c.pixels[bottomOffset+col]
				if tc == bc {
					ch, fg, bg = BlockFull, fgCode(tc), bgDefault
				} else {
					ch, fg, bg = BlockUpperHalf, fgCode(tc), bgCode(bc)
				}
			case top:
				ch, fg, bg = BlockUpperHalf, fgCode(c.pixels[topOffset+col]), bgDefault
			default:
				ch, fg, bg = BlockLowerHalf, fgCode(c.pixels[bottomOffset+col]), bgDefault
			}

			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH", row+1, col+1)
			if fg != lastFg {
				c.renderBuf.WriteString(fg)
				lastFg = fg
			}
			if bg != lastBg {
				c.renderBuf.WriteString(bg)
				lastBg = bg
			}
			c.renderBuf.WriteRune(ch)
		}
	}
	c.renderBuf.WriteString(resetCode)

	io.WriteString(w, c.renderBuf.String())
}

const (
	bgDefault = "\033[49m"
	resetCode = "\033[0m"
)

func fgCode(col colorful.Color) string {
	r, g, b := col.Clamped().RGB255()
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

func bgCode(col colorful.Color) string {
	r, g, b := col.Clamped().RGB255()
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}

// Styled wraps s in a 24-bit foreground color escape.
func Styled(col colorful.Color, s string) string {
	return fgCode(col) + s + resetCode
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	return px + 1, py/2 + 1
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
