package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// SignaturePad captures a signature on a character grid. Draw with the
// mouse, or move the cursor with the arrow keys and toggle the pen with
// Space. Backspace clears the pad.
type SignaturePad struct {
	*tview.Box
	cols, rows int
	cells      [][]bool
	cx, cy     int
	penDown    bool
	changed    func()
}

// NewSignaturePad builds an empty pad of cols x rows cells.
func NewSignaturePad(cols, rows int) *SignaturePad {
	p := &SignaturePad{Box: tview.NewBox(), cols: cols, rows: rows}
	p.Clear()
	p.SetBorder(true)
	p.SetBorderColor(tcell.ColorAqua)
	p.SetTitle(" Signature ")
	p.SetTitleColor(tcell.ColorOrange)
	return p
}

// SetChangedFunc runs after every stroke.
func (p *SignaturePad) SetChangedFunc(changed func()) *SignaturePad {
	p.changed = changed
	return p
}

// Clear erases the pad.
func (p *SignaturePad) Clear() {
	p.cells = make([][]bool, p.rows)
	for i := range p.cells {
		p.cells[i] = make([]bool, p.cols)
	}
	p.penDown = false
}

// Empty reports whether nothing was drawn.
func (p *SignaturePad) Empty() bool {
	for _, row := range p.cells {
		for _, set := range row {
			if set {
				return false
			}
		}
	}
	return true
}

// Mark sets the cell at col,row. Out-of-range cells are ignored.
func (p *SignaturePad) Mark(col, row int) {
	if col < 0 || row < 0 || col >= p.cols || row >= p.rows {
		return
	}
	p.cells[row][col] = true
	if p.changed != nil {
		p.changed()
	}
}

// PNG renders the pad as black strokes on white, scale pixels per cell.
// An empty pad returns nil.
func (p *SignaturePad) PNG(scale int) ([]byte, error) {
	if p.Empty() {
		return nil, nil
	}
	if scale < 1 {
		scale = 1
	}
	img := image.NewGray(image.Rect(0, 0, p.cols*scale, p.rows*scale))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for r, row := range p.cells {
		for c, set := range row {
			if !set {
				continue
			}
			for y := r * scale; y < (r+1)*scale; y++ {
				for x := c * scale; x < (c+1)*scale; x++ {
					img.SetGray(x, y, color.Gray{Y: 0})
				}
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *SignaturePad) Draw(screen tcell.Screen) {
	p.Box.DrawForSubclass(screen, p)
	x, y, width, height := p.GetInnerRect()
	ink := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	cursor := tcell.StyleDefault.Background(tcell.ColorAqua).Foreground(tcell.ColorBlack)
	for r := 0; r < p.rows && r < height; r++ {
		for c := 0; c < p.cols && c < width; c++ {
			ch, style := ' ', tcell.StyleDefault
			if p.cells[r][c] {
				ch, style = '█', ink
			}
			if p.HasFocus() && r == p.cy && c == p.cx {
				style = cursor
			}
			screen.SetContent(x+c, y+r, ch, nil, style)
		}
	}
}

func (p *SignaturePad) move(dx, dy int) {
	p.cx = clamp(p.cx+dx, 0, p.cols-1)
	p.cy = clamp(p.cy+dy, 0, p.rows-1)
	if p.penDown {
		p.Mark(p.cx, p.cy)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *SignaturePad) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return p.WrapInputHandler(func(event *tcell.EventKey, setFocus func(tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyUp:
			p.move(0, -1)
		case tcell.KeyDown:
			p.move(0, 1)
		case tcell.KeyLeft:
			p.move(-1, 0)
		case tcell.KeyRight:
			p.move(1, 0)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			p.Clear()
			if p.changed != nil {
				p.changed()
			}
		case tcell.KeyRune:
			if event.Rune() == ' ' {
				p.penDown = !p.penDown
				if p.penDown {
					p.Mark(p.cx, p.cy)
				}
			}
		}
	})
}

func (p *SignaturePad) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return p.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(tview.Primitive)) (bool, tview.Primitive) {
		mx, my := event.Position()
		if !p.InRect(mx, my) {
			return false, nil
		}
		x, y, _, _ := p.GetInnerRect()
		switch action {
		case tview.MouseLeftDown:
			setFocus(p)
			p.cx, p.cy = clamp(mx-x, 0, p.cols-1), clamp(my-y, 0, p.rows-1)
			p.Mark(mx-x, my-y)
			return true, p
		case tview.MouseMove:
			if event.Buttons()&tcell.Button1 != 0 {
				p.Mark(mx-x, my-y)
				return true, p
			}
		case tview.MouseLeftUp:
			return true, nil
		}
		return false, nil
	})
}
