package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/phanxgames/panopaint"
	"github.com/phanxgames/panopaint/internal/config"
	"github.com/phanxgames/panopaint/internal/logger"
)

const playbackFPS = 12

// editor is the ebiten game loop around a document, a view, and the
// stroke controller. Input is translated to viewport-normalized
// coordinates here; everything below this layer is device-agnostic.
type editor struct {
	cfg  *config.Config
	doc  *panopaint.Document
	view *panopaint.View
	ctrl *panopaint.StrokeController

	projectPath string

	playing   bool
	playAccum float64

	screenW, screenH int
}

func newEditor(cfg *config.Config, projectPath string) *editor {
	doc := openOrCreateDocument(cfg, projectPath)

	view := panopaint.NewView()
	ctrl := panopaint.NewStrokeController(doc, view)
	ctrl.Brush.Radius = cfg.Brush.Radius
	ctrl.Brush.Hardness = cfg.Brush.Hardness
	ctrl.Brush.Spacing = cfg.Brush.Spacing
	ctrl.FOVScaling = cfg.Brush.FOVScaling

	onion := panopaint.DefaultOnionSkin()
	onion.Enabled = cfg.Onion.Enabled
	onion.Before = cfg.Onion.Before
	onion.After = cfg.Onion.After
	onion.Opacity = cfg.Onion.Opacity
	onion.Wrap = cfg.Onion.Wrap
	doc.Compositor().Onion = onion

	return &editor{
		cfg:         cfg,
		doc:         doc,
		view:        view,
		ctrl:        ctrl,
		projectPath: projectPath,
		screenW:     cfg.Window.Width,
		screenH:     cfg.Window.Height,
	}
}

// openOrCreateDocument loads the project at path, or builds a fresh
// document with one paint layer inside an animation layer selected.
func openOrCreateDocument(cfg *config.Config, path string) *panopaint.Document {
	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			doc, err := panopaint.LoadProject(f)
			if err == nil {
				logger.Info("opened project", zap.String("path", path))
				return doc
			}
			logger.Error("failed to load project, starting fresh", zap.Error(err))
		} else if !os.IsNotExist(err) {
			logger.Error("failed to open project, starting fresh", zap.Error(err))
		}
	}
	doc := panopaint.NewDocument(cfg.Canvas.Width, cfg.Canvas.Height)
	anim := doc.AddLayer(panopaint.LayerAnimation, nil, -1)
	paint := doc.AddLayer(panopaint.LayerPaint, anim, -1)
	anim.SetCel(0, 0)
	doc.SetActiveLayer(paint)
	return doc
}

func (e *editor) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	e.view.Update(float32(dt))

	e.updateModifiers()
	e.handleShortcuts()
	e.updatePlayback(dt)
	e.updatePointer()
	return nil
}

func (e *editor) updateModifiers() {
	var mods panopaint.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= panopaint.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= panopaint.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= panopaint.ModCtrl
	}
	e.ctrl.State.Modifiers = mods
}

func (e *editor) handleShortcuts() {
	ctrl := e.ctrl.State.Modifiers&panopaint.ModCtrl != 0
	shift := e.ctrl.State.Modifiers&panopaint.ModShift != 0

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyZ) && ctrl && shift:
		e.ctrl.Redo()
	case inpututil.IsKeyJustPressed(ebiten.KeyZ) && ctrl:
		e.ctrl.Undo()
	case inpututil.IsKeyJustPressed(ebiten.KeyY) && ctrl:
		e.ctrl.Redo()
	case inpututil.IsKeyJustPressed(ebiten.KeyS) && ctrl:
		e.saveProject()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		e.ctrl.State.Tool = panopaint.ToolPaint
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		e.ctrl.State.Tool = panopaint.ToolErase
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		e.playing = !e.playing
		e.playAccum = 0
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		e.doc.Compositor().Onion.Enabled = !e.doc.Compositor().Onion.Enabled
		e.doc.MarkDirty()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		e.doc.SetFrame(e.doc.Frame() + 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) && e.doc.Frame() > 0 {
		e.doc.SetFrame(e.doc.Frame() - 1)
	}

	// Ruler modes: axes, diagonals, off.
	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		e.ctrl.Ruler.Mode = panopaint.RulerOff
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		e.ctrl.Ruler.Mode = panopaint.RulerAxes
	}
	if inpututil.IsKeyJustPressed(ebiten.Key3) {
		e.ctrl.Ruler.Mode = panopaint.RulerDiagonals
	}

	// Bracket keys resize the brush by a fixed ratio.
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		e.ctrl.Brush.Radius *= 0.8
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		e.ctrl.Brush.Radius *= 1.25
	}
}

func (e *editor) updatePlayback(dt float64) {
	if !e.playing {
		return
	}
	e.playAccum += dt
	step := 1.0 / playbackFPS
	for e.playAccum >= step {
		e.playAccum -= step
		e.doc.SetFrame(e.doc.Frame() + 1)
	}
	if cam := e.doc.FirstCameraLayer(); cam != nil {
		e.view.ApplyCameraState(cam.EvaluateCamera(float64(e.doc.Frame())))
	}
}

func (e *editor) updatePointer() {
	// Middle button always pans; the pan tool pans on the left button too.
	panBtn := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	u, v := e.cursorUV()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		saved := e.ctrl.State.Tool
		e.ctrl.State.Tool = panopaint.ToolPan
		e.ctrl.Begin(u, v)
		e.ctrl.State.Tool = saved
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		e.ctrl.Begin(u, v)
		return
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || panBtn {
		e.ctrl.Move(u, v)
		return
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) ||
		inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonMiddle) {
		e.ctrl.End()
	}
}

// cursorUV converts the cursor position to viewport coordinates in
// [-1, 1] with +v pointing up.
func (e *editor) cursorUV() (float64, float64) {
	x, y := ebiten.CursorPosition()
	u := 2*float64(x)/float64(e.screenW) - 1
	v := 1 - 2*float64(y)/float64(e.screenH)
	return u, v
}

func (e *editor) Draw(screen *ebiten.Image) {
	composite := e.doc.Composite()
	e.view.DrawComposite(screen, composite)
}

func (e *editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	e.screenW, e.screenH = outsideWidth, outsideHeight
	if e.screenH > 0 {
		e.view.Aspect = float64(e.screenW) / float64(e.screenH)
	}
	return outsideWidth, outsideHeight
}

func (e *editor) saveProject() {
	path := e.projectPath
	if path == "" {
		path = "untitled.pnpt"
		e.projectPath = path
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Error("save failed", zap.Error(err))
		return
	}
	defer f.Close()
	if err := e.doc.SaveProject(f, panopaint.SaveOptions{ThumbnailSize: 256}); err != nil {
		logger.Error("save failed", zap.Error(err))
		return
	}
	logger.Info("saved project", zap.String("path", path))
}

// exportAndExit renders the frame range "from:to" to PNG files.
func (e *editor) exportAndExit(rangeSpec string) error {
	parts := strings.SplitN(rangeSpec, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("export range %q: want from:to", rangeSpec)
	}
	from, err := strconv.Atoi(parts[0])
	if err != nil {
		return fmt.Errorf("export range %q: %w", rangeSpec, err)
	}
	to, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("export range %q: %w", rangeSpec, err)
	}
	logger.Info("exporting frames",
		zap.Int("from", from), zap.Int("to", to),
		zap.String("dir", e.cfg.Export.Dir))
	return e.doc.WritePNGSequence(e.cfg.Export.Dir, e.cfg.Export.Prefix, from, to)
}
