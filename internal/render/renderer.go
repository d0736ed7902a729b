// Package render draws the simulation on a character-cell screen and turns
// terminal input into game commands.
package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"

	"github.com/airslash/airslash/internal/world"
)

// Play-area units per terminal cell. A cell is roughly twice as tall as it
// is wide, so a round object stays round on screen.
const (
	CellWidth  = 16
	CellHeight = 32
)

// PlayArea returns the play-area size for a cols x rows screen. The bottom
// row is the status bar.
func PlayArea(cols, rows int) (float64, float64) {
	return float64(max(cols, 0) * CellWidth), float64(max(rows-1, 0) * CellHeight)
}

const (
	leftHalf  = '◖'
	rightHalf = '◗'
	pointer   = '✛'
)

var (
	styleBar     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
	styleTrail   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleFading  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePointer = tcell.StyleDefault.Foreground(tcell.Color(51)).Bold(true) // cyan, 256-color palette
	stylePopup   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Renderer draws one frame per call. It is used only from the loop goroutine.
type Renderer struct {
	screen tcell.Screen
	colors map[string]tcell.Color

	// per-frame scale, cells per play-area unit
	sx, sy     float64
	cols, rows int
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, colors: make(map[string]tcell.Color)}
}

// Draw renders popups, trail, objects, particles and the pointer in that
// order, then the status bar and, outside a round, the message panel.
func (r *Renderer) Draw(ws *world.State) {
	r.screen.Clear()
	r.cols, r.rows = r.screen.Size()
	playRows := r.rows - 1
	if r.cols <= 0 || playRows <= 0 {
		r.screen.Show()
		return
	}
	if ws.ValidArea() {
		r.sx = float64(r.cols) / ws.Width
		r.sy = float64(playRows) / ws.Height

		r.drawPopups(ws.Popups)
		r.drawTrail(ws.Trail)
		r.drawObjects(ws.Objects)
		r.drawParticles(ws.Particles)
		if ws.Pointer != nil {
			r.set(*ws.Pointer, pointer, stylePointer)
		}
	}

	r.drawStatus(ws)
	if !ws.Playing() {
		r.drawPanel(ws)
	}
	r.screen.Show()
}

// cell maps a play-area point to a cell; ok is false off screen.
func (r *Renderer) cell(p world.Vec2) (int, int, bool) {
	x, y := int(p.X*r.sx), int(p.Y*r.sy)
	if p.X < 0 || p.Y < 0 || x >= r.cols || y >= r.rows-1 {
		return 0, 0, false
	}
	return x, y, true
}

func (r *Renderer) set(p world.Vec2, ch rune, style tcell.Style) {
	if x, y, ok := r.cell(p); ok {
		r.screen.SetContent(x, y, ch, nil, style)
	}
}

func (r *Renderer) color(hex string) tcell.Color {
	c, ok := r.colors[hex]
	if !ok {
		c = tcell.GetColor(hex)
		r.colors[hex] = c
	}
	return c
}

func (r *Renderer) drawPopups(popups []world.Popup) {
	for _, c := range popups {
		style := stylePopup
		if c.Life < 0.3 {
			style = styleFading
		}
		x, y, ok := r.cell(c.Pos)
		if !ok {
			continue
		}
		text := fmt.Sprintf("%d COMBO!", c.Count)
		r.text(x-DisplayWidth(text)/2, y, text, style)
	}
}

// drawTrail connects consecutive trail points; the newest third is bright.
func (r *Renderer) drawTrail(trail []world.TrailPoint) {
	if len(trail) <= 2 {
		return
	}
	head := len(trail) - len(trail)/3
	for i := 1; i < len(trail); i++ {
		ch, style := '·', styleFading
		if i >= head {
			ch, style = '•', styleTrail
		}
		r.line(trail[i-1].Pos, trail[i].Pos, ch, style)
	}
}

func (r *Renderer) line(from, to world.Vec2, ch rune, style tcell.Style) {
	x0, y0 := int(from.X*r.sx), int(from.Y*r.sy)
	x1, y1 := int(to.X*r.sx), int(to.Y*r.sy)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	stepX, stepY := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if x0 >= 0 && y0 >= 0 && x0 < r.cols && y0 < r.rows-1 {
			r.screen.SetContent(x0, y0, ch, nil, style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += stepX
		}
		if e2 <= dx {
			e += dx
			y0 += stepY
		}
	}
}

func (r *Renderer) drawObjects(objects []world.FallingObject) {
	for _, o := range objects {
		style := tcell.StyleDefault.Foreground(r.color(o.Color))
		switch o.Side {
		case world.SideLeft:
			r.set(o.Pos, leftHalf, style)
		case world.SideRight:
			r.set(o.Pos, rightHalf, style)
		default:
			r.set(o.Pos, o.Glyph, style)
		}
	}
}

func (r *Renderer) drawParticles(particles []world.Particle) {
	for _, p := range particles {
		ch := '·'
		if p.Size > 8 {
			ch = '•'
		}
		style := tcell.StyleDefault.Foreground(r.color(p.Color))
		if p.Life < 0.3 {
			style = style.Dim(true)
		}
		r.set(p.Pos, ch, style)
	}
}

func (r *Renderer) drawStatus(ws *world.State) {
	y := r.rows - 1
	for x := range r.cols {
		r.screen.SetContent(x, y, ' ', nil, styleBar)
	}
	r.text(1, y, fmt.Sprintf("SCORE %d", ws.Session.Score), styleBar)
	if ws.Combo.Count > 1 {
		combo := fmt.Sprintf("x%d", ws.Combo.Count)
		r.text((r.cols-DisplayWidth(combo))/2, y, combo, styleBar)
	}
	timer := fmt.Sprintf("TIME %ds", ws.Session.TimeRemaining)
	r.text(r.cols-DisplayWidth(timer)-1, y, timer, styleBar)
}

// drawPanel shows the title or final score with the sensei message.
func (r *Renderer) drawPanel(ws *world.State) {
	mid := (r.rows - 1) / 2
	title, hint := "AIR SLASH", "Enter: start   m: mirror   q: quit"
	if ws.Session.Status == world.StatusGameOver {
		title = fmt.Sprintf("GAME OVER  ·  SCORE %d", ws.Session.Score)
		hint = "Enter: play again   q: quit"
	}
	r.centered(mid-2, title, styleTitle)
	if ws.Message != "" {
		r.centered(mid, ws.Message, styleText)
	}
	r.centered(mid+2, hint, styleHint)
}

func (r *Renderer) centered(y int, s string, style tcell.Style) {
	if y < 0 || y >= r.rows-1 {
		return
	}
	r.text((r.cols-DisplayWidth(s))/2, y, s, style)
}

// text writes s from column x, advancing two cells for wide runes.
func (r *Renderer) text(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		w := runeWidth(ch)
		if x >= 0 && x+w <= r.cols {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x += w
	}
}

func runeWidth(ch rune) int {
	switch width.LookupRune(ch).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// DisplayWidth is the number of terminal cells s occupies.
func DisplayWidth(s string) int {
	n := 0
	for _, ch := range s {
		n += runeWidth(ch)
	}
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
