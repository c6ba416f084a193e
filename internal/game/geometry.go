package game

import "math"

// Viewport is the host window size reported by the renderer.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Canvas is the drawable play field derived from the viewport.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Peg is a static obstacle. ID is its index in the board's peg order.
type Peg struct {
	ID       int  `json:"id"`
	Position Vec2 `json:"position"`
}

// Board is one generation of the play field. It is rebuilt wholesale on every
// viewport change and never patched.
type Board struct {
	Viewport Viewport `json:"viewport"`
	Canvas   Canvas   `json:"canvas"`
	Profile  Profile  `json:"profile"`
	Rows     int      `json:"rows"`
	Compact  bool     `json:"compact"`
	Pegs     []Peg    `json:"pegs"`
}

// CanvasFor sizes the canvas: capped width, height a fixed share of the window.
func CanvasFor(vp Viewport) Canvas {
	return Canvas{
		Width:  math.Min(vp.Width, MaxCanvasWidth),
		Height: vp.Height * CanvasHeightFactor,
	}
}

// IsMobile reports whether the viewport falls in the small device class.
func IsMobile(vp Viewport) bool {
	return vp.Width < MobileBreakpoint
}

// RowsFor returns the peg row count and whether the viewport was too small
// for the full lattice.
func RowsFor(vp Viewport) (int, bool) {
	if vp.Height < CompactHeight || vp.Width < CompactWidth {
		return FullRows - 1, true
	}
	return FullRows, false
}

// PegCount is the number of pegs in a lattice of the given row count.
func PegCount(rows int) int {
	n := 0
	for r := 0; r < rows; r++ {
		n += StartCols + r
	}
	return n
}

// BuildBoard lays out the triangular peg lattice for a viewport. Row r holds
// StartCols+r pegs spaced PegSpacing apart and centered on the canvas.
func BuildBoard(vp Viewport, rules Rules) *Board {
	profile := rules.Desktop
	offset := 0.0
	if IsMobile(vp) {
		profile = rules.Mobile
		offset = MobileRowShift
	}

	canvas := CanvasFor(vp)
	rows, compact := RowsFor(vp)

	b := &Board{
		Viewport: vp,
		Canvas:   canvas,
		Profile:  profile,
		Rows:     rows,
		Compact:  compact,
		Pegs:     make([]Peg, 0, PegCount(rows)),
	}

	for row := 0; row < rows; row++ {
		cols := StartCols + row
		y := float64(row)*profile.PegSpacing + RowTopMargin + offset
		totalRowWidth := float64(cols-1) * profile.PegSpacing
		startX := canvas.Width/2 - totalRowWidth/2

		for col := 0; col < cols; col++ {
			x := startX + float64(col)*profile.PegSpacing
			b.Pegs = append(b.Pegs, Peg{ID: len(b.Pegs), Position: NewVec2(x, y)})
		}
	}

	return b
}

// LandingLine is the y at which a ball is scored.
func (b *Board) LandingLine() float64 {
	return b.Canvas.Height - LandingMargin
}

// ExitLine is the y past which an unscored ball is discarded.
func (b *Board) ExitLine() float64 {
	return b.Canvas.Height + OutOfBoundsMargin
}

// SlotFor maps an x coordinate to a slot index, clamped into range.
func (b *Board) SlotFor(x float64, slots int) int {
	slotWidth := b.Canvas.Width / float64(slots)
	f := math.Floor(x / slotWidth)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > float64(slots-1) {
		return slots - 1
	}
	return int(f)
}
