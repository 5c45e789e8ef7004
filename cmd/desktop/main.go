// Command desktop shows every artefact of an RG compile in a tabbed
// window and recompiles whenever the source file is saved.
package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"rglang/pkg/compiler"
	"rglang/pkg/utils"
	"rglang/pkg/viewer"
	"rglang/pkg/watch"
)

const (
	charWidth  = 7 // basicfont.Face7x13
	charHeight = 13
	margin     = 4
	headerRows = 2 // tab bar and rule
	footerRows = 1 // status line
)

var (
	background = color.RGBA{0x1e, 0x1f, 0x24, 0xff}
	barColor   = color.RGBA{0x2c, 0x2e, 0x36, 0xff}
	textColor  = color.RGBA{0xdc, 0xdc, 0xd2, 0xff}
	errorColor = color.RGBA{0xf0, 0x6c, 0x6c, 0xff}
)

var digitKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
}

type Game struct {
	path   string
	model  *viewer.Model
	face   text.Face
	reload chan struct{}
	width  int
	height int
}

// gridSize converts a window size in pixels to text cells for the
// scrolling area between the header and the status line.
func gridSize(width, height int) (cols, rows int) {
	cols = (width - 2*margin) / charWidth
	rows = (height-2*margin)/charHeight - headerRows - footerRows
	return max(cols, 1), max(rows, 1)
}

// held reports a key press, repeating while the key stays down.
func held(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > 20 && d%4 == 0)
}

func (g *Game) load() {
	src, err := os.ReadFile(g.path)
	if err != nil {
		g.model.Load(filepath.Base(g.path), &compiler.Compilation{}, err)
		return
	}
	c, err := compiler.Compile(string(src), compiler.Options{MaxSteps: 1_000_000})
	g.model.Load(filepath.Base(g.path), c, err)
}

func (g *Game) Update() error {
	select {
	case <-g.reload:
		g.load()
	default:
	}

	m := g.model
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab) && ebiten.IsKeyPressed(ebiten.KeyShift):
		m.Prev()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		m.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		m.Prev()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.load()
	case held(ebiten.KeyArrowDown):
		m.ScrollBy(1)
	case held(ebiten.KeyArrowUp):
		m.ScrollBy(-1)
	case held(ebiten.KeyPageDown):
		m.PageDown()
	case held(ebiten.KeyPageUp):
		m.PageUp()
	}
	for i, k := range digitKeys {
		if inpututil.IsKeyJustPressed(k) {
			m.Select(viewer.Tab(i))
		}
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		m.ScrollBy(-int(dy * 3))
	}
	return nil
}

func (g *Game) drawText(screen *ebiten.Image, s string, col, row int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(margin+col*charWidth), float64(margin+row*charHeight))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, g.face, op)
}

func fillRows(screen *ebiten.Image, row, n int, c color.Color) {
	w := screen.Bounds().Dx()
	r := image.Rect(0, margin+row*charHeight, w, margin+(row+n)*charHeight)
	screen.SubImage(r).(*ebiten.Image).Fill(c)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	m := g.model
	_, rows := m.Size()

	fillRows(screen, 0, 1, barColor)
	g.drawText(screen, m.TabBar(), 0, 0, textColor)

	body := textColor
	if m.Active == viewer.TabErrors && m.Panels[viewer.TabErrors].Lines[0] != "No errors." {
		body = errorColor
	}
	for i, line := range m.Visible() {
		g.drawText(screen, line, 0, headerRows+i, body)
	}

	statusRow := headerRows + rows
	fillRows(screen, statusRow, 1, barColor)
	status := fmt.Sprintf("%s  [%d]  tab/1-7 switch  arrows scroll  r reload", m.Status, m.Scroll())
	ebitenutil.DebugPrintAt(screen, status, margin, margin+statusRow*charHeight-2)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.model.Resize(gridSize(outsideWidth, outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// watchSource signals reload on every save of path until the watcher
// closes.
func watchSource(path string, reload chan<- struct{}) (*watch.Watcher, error) {
	w, err := watch.New([]string{path}, 150*time.Millisecond)
	if err != nil {
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				if ev.Op&(watch.OpWrite|watch.OpCreate) == 0 {
					continue
				}
				select {
				case reload <- struct{}{}:
				default:
				}
			case err := <-w.Errors():
				log.Printf("watch error: %v", err)
			}
		}
	}()
	return w, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: desktop file.rg")
		os.Exit(2)
	}
	fullPath, _, err := utils.GetPathInfo(os.Args[1])
	if err != nil {
		log.Fatalf("Bad path: %v", err)
	}

	const width, height = 800, 600
	g := &Game{
		path:   fullPath,
		model:  viewer.New(gridSize(width, height)),
		face:   text.NewGoXFace(basicfont.Face7x13),
		reload: make(chan struct{}, 1),
		width:  width,
		height: height,
	}
	g.load()

	w, err := watchSource(fullPath, g.reload)
	if err != nil {
		log.Printf("live reload disabled: %v", err)
	} else {
		defer w.Close()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("RG - " + filepath.Base(fullPath))
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
