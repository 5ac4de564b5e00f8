package loop

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/kitebattle/internal/draw"
)

const starCount = 50

var starColor = colorful.Color{R: 1, G: 1, B: 1}

// drawStars scatters twinkling stars over the sky. Positions are fixed per
// index so the field is stable between frames.
func drawStars(canvas *draw.Canvas, elapsed time.Duration) {
	width := canvas.LogicalWidth()
	height := canvas.LogicalHeight()
	t := elapsed.Seconds()

	for i := 0; i < starCount; i++ {
		x := math.Mod(float64(i)*137.508, width)
		y := math.Mod(float64(i)*97.332, height)
		brightness := (math.Sin(t+float64(i)) + 1) / 2
		if brightness < 0.2 {
			continue
		}
		canvas.SetFloat(x, y, draw.Fade(starColor, brightness*0.8))
	}
}
