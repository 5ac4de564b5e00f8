package object

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/kitebattle/internal/draw"
)

var (
	crossColor = colorful.Color{R: 1, G: 1, B: 1}
	trimColor  = colorful.Color{R: 1, G: 0xd7 / 255.0, B: 0}
)

// Draw renders the trail, the string down to the ground and the diamond body.
// A cut kite fades out with 1 - Fade.
func (k *Kite) Draw(ctx DrawContext) {
	alpha := 1.0
	if k.cut {
		alpha = 1 - k.Fade
	}
	if alpha <= 0 {
		return
	}

	k.drawTrail(ctx, alpha)
	k.drawString(ctx, alpha)
	k.drawBody(ctx, alpha)
}

func (k *Kite) drawTrail(ctx DrawContext, alpha float64) {
	for i := 1; i < len(k.trail); i++ {
		a, b := k.trail[i-1], k.trail[i]
		col := draw.Fade(k.Color, alpha*b.Alpha*0.5)
		ctx.Canvas.DrawLine(draw.Point{X: a.X, Y: a.Y}, draw.Point{X: b.X, Y: b.Y}, col)
	}
}

// drawString draws the line from the kite to the arena bottom. The far end
// sways with time and drags behind horizontal movement.
func (k *Kite) drawString(ctx DrawContext, alpha float64) {
	sway := math.Sin(ctx.Elapsed.Seconds()*1000/800+k.X/100) * 15
	if math.Hypot(k.VX, k.VY) > 0.5 {
		sway += k.VX * 3
	}
	end := draw.Point{X: k.X + sway, Y: ctx.Arena.Height}
	ctx.Canvas.DrawLine(draw.Point{X: k.X, Y: k.Y}, end, draw.Fade(k.Color, alpha*0.6))
}

// drawBody draws the diamond rotated to the heading plus a quarter turn, with
// a light cross and a gold inner border.
func (k *Kite) drawBody(ctx DrawContext, alpha float64) {
	half := k.Size / 2
	rot := k.Angle + math.Pi/4
	sin, cos := math.Sincos(rot)

	at := func(lx, ly float64) draw.Point {
		return draw.Point{X: k.X + lx*cos - ly*sin, Y: k.Y + lx*sin + ly*cos}
	}

	body := ctx.Canvas.BorrowPoints(4)
	body[0], body[1], body[2], body[3] = at(0, -half), at(half, 0), at(0, half), at(-half, 0)
	ctx.Canvas.DrawPolygon(body, true, draw.Fade(k.Color, alpha))

	cross := draw.Fade(crossColor, alpha*0.9)
	ctx.Canvas.DrawLine(at(0, -half), at(0, half), cross)
	ctx.Canvas.DrawLine(at(-half, 0), at(half, 0), cross)

	inner := half - 3
	trim := ctx.Canvas.BorrowPoints(4)
	trim[0], trim[1], trim[2], trim[3] = at(0, -inner), at(inner, 0), at(0, inner), at(-inner, 0)
	ctx.Canvas.DrawPolygon(trim, false, draw.Fade(trimColor, alpha))
}

var _ Object = (*Kite)(nil)
